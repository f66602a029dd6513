package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the request id on requests and responses.
const Header = "X-Ray-ID"

// LocalsKey is the fiber locals key the id is stored under.
const LocalsKey = "ray_id"

// New returns a middleware that reuses the incoming X-Ray-ID or generates a
// new one, stores it in the context locals and echoes it on the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
