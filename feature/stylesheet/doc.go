// Package stylesheet turns element styles into content-addressed CSS rules
// and publishes them to object storage.
//
// A Style hashes to a class name with xxhash, so equal styles share one rule
// no matter which elements use them. A Sheet collects the rules in use. The
// Publisher mirrors a sheet into a bucket with reconcile.SyncMapSorted: new
// classes are uploaded, rules whose text changed are uploaded again and
// classes that left the sheet are removed. Prune clears objects left behind
// by an earlier process.
package stylesheet
