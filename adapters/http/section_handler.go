package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/resume-builder/internal/application/usecase/profile"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/apperror"
)

// SectionHandler exposes one embedded collection over HTTP.
type SectionHandler[T any, P profile.RecordPtr[T]] struct {
	manager *profileUC.CollectionManager[T, P]
}

func NewSectionHandler[T any, P profile.RecordPtr[T]](m *profileUC.CollectionManager[T, P]) *SectionHandler[T, P] {
	return &SectionHandler[T, P]{manager: m}
}

// Register mounts the collection routes on a group already scoped to
// /api/userprofile/:userID.
func (h *SectionHandler[T, P]) Register(g *gin.RouterGroup) {
	s := h.manager.Section()
	g.POST("/"+s.Path, h.AddItem)
	g.GET("/"+s.Path, h.ListItems)
	g.PUT("/"+s.Path+"/:itemId", h.UpdateItem)
	g.DELETE("/"+s.Path+"/:itemId", h.DeleteItem)
	g.PATCH("/"+s.Path+"/:itemId/toggle", h.ToggleField)
	g.PUT("/"+s.ReorderPath()+"/reorder", h.Reorder)
}

func (h *SectionHandler[T, P]) bindRecord(c *gin.Context) (P, error) {
	rec := h.manager.Section().New()
	if err := c.ShouldBindJSON(rec); err != nil {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("invalid JSON body for %s", h.manager.Section().Path), err)
	}
	return rec, nil
}

func (h *SectionHandler[T, P]) AddItem(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	rec, err := h.bindRecord(c)
	if err != nil {
		c.Error(err)
		return
	}

	out, err := h.manager.AddItem(c.Request.Context(), profileUC.AddItemInput[P]{UserID: userID, Record: rec})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, out.Profile)
	c.Header("X-Item-Id", out.Item.GetItemID())
	c.JSON(http.StatusCreated, out.Profile)
}

func (h *SectionHandler[T, P]) ListItems(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	items, err := h.manager.ListItems(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *SectionHandler[T, P]) UpdateItem(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	version, err := expectedVersion(c)
	if err != nil {
		c.Error(err)
		return
	}
	rec, err := h.bindRecord(c)
	if err != nil {
		c.Error(err)
		return
	}

	out, err := h.manager.UpdateItem(c.Request.Context(), profileUC.UpdateItemInput[P]{
		UserID:          userID,
		ItemID:          c.Param("itemId"),
		Record:          rec,
		ExpectedVersion: version,
	})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, out.Profile)
	c.JSON(http.StatusOK, out.Profile)
}

func (h *SectionHandler[T, P]) DeleteItem(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	out, err := h.manager.DeleteItem(c.Request.Context(), profileUC.DeleteItemInput{
		UserID: userID,
		ItemID: c.Param("itemId"),
	})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, out.Profile)
	c.JSON(http.StatusOK, out.Profile)
}

func (h *SectionHandler[T, P]) ToggleField(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	version, err := expectedVersion(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for toggle", err))
		return
	}

	out, err := h.manager.ToggleField(c.Request.Context(), profileUC.ToggleFieldInput{
		UserID:          userID,
		ItemID:          c.Param("itemId"),
		Field:           req.Field,
		Value:           req.Value,
		ExpectedVersion: version,
	})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, out.Profile)
	c.JSON(http.StatusOK, out.Profile)
}

// Reorder expects {"<path>s": [...records in the new order]}.
func (h *SectionHandler[T, P]) Reorder(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	version, err := expectedVersion(c)
	if err != nil {
		c.Error(err)
		return
	}

	key := h.manager.Section().ReorderPath()
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(apperror.NewInvalidInput(fmt.Sprintf("body must be {%q: [...]}", key), err))
		return
	}
	list, ok := body[key]
	if !ok {
		c.Error(apperror.NewInvalidInput(fmt.Sprintf("body must be {%q: [...]}", key), nil))
		return
	}
	// Other keys in the body are ignored.
	var raw []json.RawMessage
	if err := json.Unmarshal(list, &raw); err != nil {
		c.Error(apperror.NewInvalidInput(fmt.Sprintf("%s must be an array", key), err))
		return
	}

	records := make([]P, 0, len(raw))
	for i, item := range raw {
		rec := h.manager.Section().New()
		if err := json.Unmarshal(item, rec); err != nil {
			c.Error(apperror.NewInvalidInput(fmt.Sprintf("%s[%d] is not a valid record", key, i), err))
			return
		}
		records = append(records, rec)
	}

	out, err := h.manager.Reorder(c.Request.Context(), profileUC.ReorderInput[P]{
		UserID:          userID,
		Records:         records,
		ExpectedVersion: version,
	})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, out.Profile)
	c.JSON(http.StatusOK, out.Profile)
}
