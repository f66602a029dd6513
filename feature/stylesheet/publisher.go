package stylesheet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"treesync/core/reconcile"
	"treesync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const contentType = "text/css"

// Object is a rule published to the bucket.
type Object struct {
	Key string `json:"key"`
	CSS string `json:"-"`
}

// PublishReport counts the storage calls of one publish.
type PublishReport struct {
	Uploaded int `json:"uploaded"`
	Skipped  int `json:"skipped"`
	Removed  int `json:"removed"`
}

// Publisher keeps the rules of a sheet mirrored in an object storage
// bucket, one object per class. Publish uploads new and changed rules and
// removes rules no longer in the sheet.
type Publisher struct {
	mu      sync.Mutex
	client  storage.Client
	bucket  string
	cfg     Config
	logger  *zap.Logger
	objects reconcile.Map[string, Object]
}

// NewPublisher creates a publisher writing into bucket.
func NewPublisher(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, bucket: bucket, cfg: cfg, logger: logger}
}

// ObjectName returns the object name of a class.
func (p *Publisher) ObjectName(class string) string {
	return p.cfg.Prefix + class + ".css"
}

// Publish syncs the bucket with the rules of sheet.
func (p *Publisher) Publish(ctx context.Context, sheet *Sheet) (PublishReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a := &objectAdapter{ctx: ctx, p: p}
	err := reconcile.SyncMapSorted(&p.objects, p.bucket, sheet.Rules(), a)
	if err != nil {
		p.logger.Error("Failed to publish stylesheet", zap.String("bucket", p.bucket), zap.Error(err))
		return a.report, fmt.Errorf("failed to publish stylesheet: %w", err)
	}

	p.logger.Info("Stylesheet published",
		zap.String("bucket", p.bucket),
		zap.Int("uploaded", a.report.Uploaded),
		zap.Int("skipped", a.report.Skipped),
		zap.Int("removed", a.report.Removed),
	)
	return a.report, nil
}

// Published returns the object names of the published rules, by class.
func (p *Publisher) Published() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]string, p.objects.Len())
	for class, obj := range p.objects.All() {
		out[class] = obj.Key
	}
	return out
}

// Prune removes objects under the rule prefix that the publisher does not
// track, such as rules left behind by an earlier process. It returns the
// number of removed objects.
func (p *Publisher) Prune(ctx context.Context) (int, error) {
	p.mu.Lock()
	keep := make(map[string]bool, p.objects.Len())
	for _, obj := range p.objects.All() {
		keep[obj.Key] = true
	}
	p.mu.Unlock()

	var stale []string
	for obj := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{Prefix: p.cfg.Prefix, Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("failed to list %s: %w", p.bucket, obj.Err)
		}
		if !keep[obj.Key] {
			stale = append(stale, obj.Key)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, key := range stale {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var errs []error
	for rerr := range p.client.RemoveObjects(ctx, p.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("failed to remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	if err := errors.Join(errs...); err != nil {
		return len(stale) - len(errs), err
	}

	p.logger.Info("Pruned stale rules", zap.String("bucket", p.bucket), zap.Int("removed", len(stale)))
	return len(stale), nil
}

// PublishBundle uploads the whole sheet as one stylesheet object.
func PublishBundle(ctx context.Context, client storage.Client, bucket, name string, sheet *Sheet) error {
	return storage.PutBytes(ctx, client, bucket, name, []byte(sheet.Bundle()), contentType)
}

// objectAdapter applies map callbacks to the bucket for one publish.
type objectAdapter struct {
	ctx    context.Context
	p      *Publisher
	report PublishReport
}

func (a *objectAdapter) Create(bucket string, class string, css string) (Object, error) {
	obj := Object{Key: a.p.ObjectName(class), CSS: css}
	if err := storage.PutBytes(a.ctx, a.p.client, bucket, obj.Key, []byte(css), contentType); err != nil {
		return Object{}, err
	}
	a.report.Uploaded++
	return obj, nil
}

func (a *objectAdapter) Modified(bucket string, class string, old *Object, css string) error {
	if old.CSS == css {
		a.report.Skipped++
		return nil
	}
	if err := storage.PutBytes(a.ctx, a.p.client, bucket, old.Key, []byte(css), contentType); err != nil {
		return err
	}
	old.CSS = css
	a.report.Uploaded++
	return nil
}

func (a *objectAdapter) Remove(bucket string, class string, old Object) error {
	if err := a.p.client.RemoveObject(a.ctx, bucket, old.Key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", old.Key, err)
	}
	a.report.Removed++
	return nil
}

func (a *objectAdapter) Unchanged(old Object, css string) bool {
	return old.CSS == css
}
