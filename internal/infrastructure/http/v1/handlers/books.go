package handlers

import (
	"github.com/gin-gonic/gin"

	"dcolumn/internal/domain/books"
	"dcolumn/internal/infrastructure/http/v1/dto"
)

// BooksHandler serves the book catalog and its dynamic values.
type BooksHandler struct {
	BaseHandler
	svc *books.Service
}

// NewBooksHandler creates the books handler.
func NewBooksHandler(svc *books.Service) *BooksHandler {
	return &BooksHandler{svc: svc}
}

// Create stores a book with its dynamic form values.
func (h *BooksHandler) Create(c *gin.Context) {
	var req dto.BookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b := req.ToModel()
	if err := h.svc.CreateBook(c.Request.Context(), b, req.Values); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// Update stores a book's native fields and dynamic values in one
// transaction.
func (h *BooksHandler) Update(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	var req dto.BookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	current, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	b := req.ToModel()
	b.Base = current.Base
	if err := h.svc.UpdateBook(c.Request.Context(), b, req.Values); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, b)
}

// Get returns one book together with its display context: serialized
// descriptors, relation options and stored values.
func (h *BooksHandler) Get(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	b, dc, err := h.svc.GetBookContext(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"book": b, "context": dc})
}

// List returns books.
func (h *BooksHandler) List(c *gin.Context) {
	items, err := h.svc.ListBooks(c.Request.Context(), h.BoolQuery(c, "include_inactive"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// Delete soft-deletes a book.
func (h *BooksHandler) Delete(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateAuthor stores an author.
func (h *BooksHandler) CreateAuthor(c *gin.Context) {
	var req dto.NamedRequest
	if !h.BindJSON(c, &req) {
		return
	}
	a := &books.Author{Name: req.Name}
	if err := h.svc.CreateAuthor(c.Request.Context(), a); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// ListAuthors returns active authors.
func (h *BooksHandler) ListAuthors(c *gin.Context) {
	items, err := h.svc.ListAuthors(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// CreatePublisher stores a publisher.
func (h *BooksHandler) CreatePublisher(c *gin.Context) {
	var req dto.NamedRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := &books.Publisher{Name: req.Name}
	if err := h.svc.CreatePublisher(c.Request.Context(), p); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// ListPublishers returns active publishers.
func (h *BooksHandler) ListPublishers(c *gin.Context) {
	items, err := h.svc.ListPublishers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// CreatePromotion stores a promotion.
func (h *BooksHandler) CreatePromotion(c *gin.Context) {
	var req dto.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToModel()
	if err := h.svc.CreatePromotion(c.Request.Context(), p); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// ListPromotions returns active promotions.
func (h *BooksHandler) ListPromotions(c *gin.Context) {
	items, err := h.svc.ListPromotions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"items": items, "count": len(items)})
}
