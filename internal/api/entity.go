package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
)

// entity exposes one collection with the semantics of the original PHP
// endpoint: only known fields are written, updates are partial, rows are
// listed newest first.
type entity[M any, R any] struct {
	fields   []string
	list     func(context.Context) ([]M, error)
	create   func(context.Context, *M) error
	update   func(context.Context, M) error
	remove   func(context.Context, uint) error
	id       func(M) uint
	encode   func(M) R
	decode   func(R) M
	validate func(*M) error
}

func (e entity[M, R]) register(g *gin.RouterGroup) {
	g.GET("", e.handleList)
	g.POST("", e.handleCreate)
	g.GET("/:id", e.handleGet)
	g.PUT("/:id", e.handleUpdate)
	g.PATCH("/:id", e.handleUpdate)
	g.DELETE("/:id", e.handleDelete)
}

func (e entity[M, R]) handleList(c *gin.Context) {
	items, err := e.list(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return e.id(items[i]) > e.id(items[j]) })
	rows := make([]R, 0, len(items))
	for _, it := range items {
		rows = append(rows, e.encode(it))
	}
	c.JSON(http.StatusOK, rows)
}

func (e entity[M, R]) handleGet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := e.find(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, e.encode(*item))
}

func (e entity[M, R]) handleCreate(c *gin.Context) {
	fields, ok := e.knownFields(c)
	if !ok {
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no_fields"})
		return
	}

	var row R
	if err := remarshal(fields, &row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_body"})
		return
	}
	item := e.decode(row)
	if err := e.validate(&item); err != nil {
		writeError(c, err)
		return
	}
	if err := e.create(c.Request.Context(), &item); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": e.id(item)})
}

func (e entity[M, R]) handleUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fields, ok := e.knownFields(c)
	if !ok {
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no_update"})
		return
	}

	existing, err := e.find(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	merged := make(map[string]json.RawMessage)
	if err := remarshal(e.encode(*existing), &merged); err != nil {
		writeError(c, err)
		return
	}
	for k, v := range fields {
		merged[k] = v
	}
	var row R
	if err := remarshal(merged, &row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_body"})
		return
	}
	item := e.decode(row)
	if err := e.validate(&item); err != nil {
		writeError(c, err)
		return
	}
	if err := e.update(c.Request.Context(), item); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (e entity[M, R]) handleDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := e.remove(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (e entity[M, R]) find(ctx context.Context, id uint) (*M, error) {
	items, err := e.list(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if e.id(items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// knownFields keeps the body keys the entity accepts. An empty body has
// no fields.
func (e entity[M, R]) knownFields(c *gin.Context) (map[string]json.RawMessage, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_body"})
		return nil, false
	}
	body := make(map[string]json.RawMessage)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_body"})
			return nil, false
		}
	}
	known := make(map[string]json.RawMessage)
	for _, f := range e.fields {
		if v, ok := body[f]; ok {
			known[f] = v
		}
	}
	return known, true
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_id"})
		return 0, false
	}
	return uint(id), true
}

func remarshal(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
