package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planforge/planforge/internal/codec"
	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/estimate"
	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/source"
	"github.com/planforge/planforge/internal/store"
	"github.com/planforge/planforge/internal/util"
)

// scriptBody is the create/edit payload for funcs and modes.
type scriptBody struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Inputs      []string `json:"inputs"`
	Content     string   `json:"content"`
}

func (s *Server) requireCollection(c *gin.Context) {
	if !model.ValidCollection(c.Param("collection")) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
	}
}

func isComponentCollection(collection string) bool {
	return collection == model.CollectionPlans || collection == model.CollectionSubcomponents
}

// fail maps store and codec errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrVersionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidCollection):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDecisionRequired), errors.Is(err, source.ErrStaleReference):
		status = http.StatusConflict
	case errors.Is(err, codec.ErrUnreadableFormat):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.deps.Logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseDecision(c *gin.Context) (store.Decision, bool) {
	switch c.Query("decision") {
	case "":
		return store.DecisionNone, true
	case "continue":
		return store.DecisionContinue, true
	case "new":
		return store.DecisionNewVersion, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be 'continue' or 'new'"})
		return store.DecisionNone, false
	}
}

func (s *Server) readComponent(c *gin.Context) (component.Component, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	comp, err := codec.ReadBytes(body)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return comp, true
}

func (s *Server) handleList(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	docs, err := s.deps.Store.List(c.Param("collection"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	filter := c.Query("filter")
	out := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if util.MatchStrings(filter, doc.Name, doc.Description, string(doc.Tags)) {
			out = append(out, doc)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreate(c *gin.Context) {
	collection := c.Param("collection")
	if isComponentCollection(collection) {
		comp, ok := s.readComponent(c)
		if !ok {
			return
		}
		doc, err := s.deps.Store.CreateComponent(collection, comp, "")
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, doc)
		return
	}

	var body scriptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := s.deps.Store.Create(collection, s.scriptMeta(collection, body), body.Content, "")
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (s *Server) scriptMeta(collection string, body scriptBody) store.Meta {
	if collection == model.CollectionFuncs {
		return store.FuncMeta(body.Name, body.Description, body.Tags, body.Inputs, body.Content)
	}
	return store.ModeMeta(body.Name, body.Description, body.Tags, body.Content)
}

func (s *Server) handleGet(c *gin.Context) {
	doc, err := s.deps.Store.GetByPath(c.Param("collection") + "/" + c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleEdit(c *gin.Context) {
	decision, ok := parseDecision(c)
	if !ok {
		return
	}
	collection := c.Param("collection")
	id := c.Param("id")
	delta := c.Query("delta")

	if isComponentCollection(collection) {
		comp, ok := s.readComponent(c)
		if !ok {
			return
		}
		ver, err := s.deps.Store.EditComponent(id, comp, delta, decision)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, ver)
		return
	}

	var body scriptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ver, err := s.deps.Store.Edit(id, s.scriptMeta(collection, body), body.Content, delta, decision)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ver)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.deps.Store.Delete(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleTouch(c *gin.Context) {
	if err := s.deps.Store.Touch(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCopy(c *gin.Context) {
	if !isComponentCollection(c.Param("collection")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only plans and subComponents can be copied"})
		return
	}
	doc, err := s.deps.Store.CopyComponent(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleVersions(c *gin.Context) {
	if _, err := s.deps.Store.Get(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	versions, err := s.deps.Store.Versions(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

func (s *Server) handleLatest(c *gin.Context) {
	ver, err := s.deps.Store.LatestVersion(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ver)
}

func (s *Server) handleNewVersion(c *gin.Context) {
	collection := c.Param("collection")
	id := c.Param("id")

	if isComponentCollection(collection) {
		comp, ok := s.readComponent(c)
		if !ok {
			return
		}
		ver, err := s.deps.Store.NewComponentVersion(id, comp)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, ver)
		return
	}

	var body scriptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ver, err := s.deps.Store.NewVersion(id, s.scriptMeta(collection, body), body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ver)
}

func (s *Server) handleLock(c *gin.Context) {
	if err := s.deps.Store.Lock(c.Param("id"), c.Param("versionId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRevert(c *gin.Context) {
	if err := s.deps.Store.Revert(c.Param("id"), c.Param("versionId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteVersion(c *gin.Context) {
	if err := s.deps.Store.DeleteVersion(c.Param("id"), c.Param("versionId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEstimate(c *gin.Context) {
	if !isComponentCollection(c.Param("collection")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "estimates require a component document"})
		return
	}
	comp, _, err := s.deps.Store.LatestComponent(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate.Estimate(comp))
}

func (s *Server) handleExport(c *gin.Context) {
	if !isComponentCollection(c.Param("collection")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exports require a component document"})
		return
	}
	doc, err := s.deps.Store.GetByPath(c.Param("collection") + "/" + c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	comp, _, err := s.deps.Store.LatestComponent(doc.ID)
	if err != nil {
		s.fail(c, err)
		return
	}

	compress := c.Query("compress") != "false"
	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	path, err := codec.ExportFile(s.deps.ExportDir, name, comp, compress, time.Now().UTC())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) handleImport(c *gin.Context) {
	collection := c.DefaultQuery("collection", model.CollectionPlans)
	if !isComponentCollection(collection) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imports go to plans or subComponents"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	comp, err := codec.ImportReader(file, header.Filename)
	if err != nil {
		s.fail(c, err)
		return
	}
	doc, err := s.deps.Store.CreateComponent(collection, comp, "")
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleClipboardList(c *gin.Context) {
	items, err := s.deps.Clipboard.Items()
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		text, err := codec.Write(item)
		if err != nil {
			s.fail(c, err)
			return
		}
		out = append(out, text)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleClipboardPush(c *gin.Context) {
	comp, ok := s.readComponent(c)
	if !ok {
		return
	}
	if err := s.deps.Clipboard.Push(comp); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"length": s.deps.Clipboard.Len()})
}

func (s *Server) handleClipboardRemove(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	s.deps.Clipboard.Remove(index)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClipboardClear(c *gin.Context) {
	s.deps.Clipboard.Clear()
	c.Status(http.StatusNoContent)
}
