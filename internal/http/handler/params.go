package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// pathID returns the named path parameter when it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// includeDeleted parses ?include_deleted; absent means false.
func includeDeleted(c *fiber.Ctx) (bool, error) {
	v := c.Query("include_deleted")
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

type listResponse[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: len(items)}
}
