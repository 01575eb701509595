package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"address-book/internal/domain"
	"address-book/internal/service"
)

const (
	defaultPageLimit = 10
	minPageLimit     = 10
	maxPageLimit     = 500
	minSearchLength  = 3
)

type contactRequest struct {
	FirstName   string `json:"first_name" binding:"required,min=3,max=150"`
	LastName    string `json:"last_name" binding:"required,min=3,max=150"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required,min=7,max=20"`
	Birthday    string `json:"birthday" binding:"required"`
}

type contactPatchRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,min=3,max=150"`
	LastName    *string `json:"last_name" binding:"omitempty,min=3,max=150"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,min=7,max=20"`
	Birthday    *string `json:"birthday" binding:"omitempty"`
}

// pagination pulls limit/offset query params, clamping the limit into the
// allowed range.
func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if limit < minPageLimit {
		limit = minPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}

func contactID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) listContacts(c *gin.Context) {
	limit, offset := pagination(c)

	contacts, err := h.contacts.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Errorf("list contacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, contactsToResponse(contacts))
}

func (h *Handler) getContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	contact, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT FOUND"})
			return
		}
		h.logger.Errorf("get contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, contactToResponse(*contact))
}

func (h *Handler) createContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	birthday, err := time.Parse(dateLayout, req.Birthday)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "birthday must be formatted as YYYY-MM-DD"})
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), &domain.Contact{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Birthday:    birthday,
	})
	if err != nil {
		h.logger.Errorf("create contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, contactToResponse(*contact))
}

func (h *Handler) updateContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req contactPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.ContactPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(dateLayout, *req.Birthday)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birthday must be formatted as YYYY-MM-DD"})
			return
		}
		patch.Birthday = &birthday
	}

	contact, err := h.contacts.Update(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT FOUND"})
			return
		}
		h.logger.Errorf("update contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, contactToResponse(*contact))
}

func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT FOUND"})
			return
		}
		h.logger.Errorf("delete contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) searchContacts(c *gin.Context) {
	text := c.Param("text")
	if len(text) < minSearchLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search text must be at least 3 characters long"})
		return
	}
	limit, offset := pagination(c)

	contacts, err := h.contacts.Search(c.Request.Context(), text, limit, offset)
	if err != nil {
		h.logger.Errorf("search contacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if len(contacts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT FOUND"})
		return
	}
	c.JSON(http.StatusOK, contactsToResponse(contacts))
}

func (h *Handler) birthdayContacts(c *gin.Context) {
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Days must be positive"})
		return
	}
	limit, offset := pagination(c)

	contacts, err := h.contacts.Birthdays(c.Request.Context(), days, limit, offset)
	if err != nil {
		h.logger.Errorf("birthday contacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if len(contacts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT FOUND"})
		return
	}
	c.JSON(http.StatusOK, contactsToResponse(contacts))
}
