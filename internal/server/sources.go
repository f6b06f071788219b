package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planforge/planforge/internal/codec"
	"github.com/planforge/planforge/internal/component"
	"github.com/planforge/planforge/internal/geo"
	"github.com/planforge/planforge/internal/source"
	"github.com/planforge/planforge/internal/store"
)

// sourceRef is the wire shape of one source reference in refresh listings.
type sourceRef struct {
	NodeID      string `json:"nodeId"`
	Path        string `json:"path"`
	Status      string `json:"status"`
	DisplayPath string `json:"displayPath"`
}

func sourceRefs(root component.Component, refs []*source.Ref) []sourceRef {
	out := make([]sourceRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, sourceRef{
			NodeID:      ref.NodeID,
			Path:        ref.Path,
			Status:      ref.Status.String(),
			DisplayPath: source.DisplayPath(root, ref.NodeID),
		})
	}
	return out
}

// latestComponent loads the latest tree of a component document, rejecting
// script collections up front.
func (s *Server) latestComponent(c *gin.Context) (component.Component, bool) {
	if !isComponentCollection(c.Param("collection")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source links require a component document"})
		return nil, false
	}
	comp, _, err := s.deps.Store.LatestComponent(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return comp, true
}

func (s *Server) persistComponent(c *gin.Context, comp component.Component, decision store.Decision) bool {
	_, err := s.deps.Store.EditComponent(c.Param("id"), comp, store.NewDelta(), decision)
	if err != nil {
		s.fail(c, err)
		return false
	}
	return true
}

func (s *Server) handleSourcesRefresh(c *gin.Context) {
	comp, ok := s.latestComponent(c)
	if !ok {
		return
	}
	refs := source.Collect(comp)
	s.deps.Sources.Refresh(refs)
	c.JSON(http.StatusOK, sourceRefs(comp, refs))
}

func (s *Server) handleSourcesAccept(c *gin.Context) {
	decision, ok := parseDecision(c)
	if !ok {
		return
	}
	comp, ok := s.latestComponent(c)
	if !ok {
		return
	}
	refs := source.Collect(comp)
	s.deps.Sources.Refresh(refs)

	work, applied, err := s.deps.Sources.Accept(comp, refs)
	if err != nil {
		s.fail(c, err)
		return
	}
	if applied > 0 && !s.persistComponent(c, work, decision) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (s *Server) handleSourcesReject(c *gin.Context) {
	decision, ok := parseDecision(c)
	if !ok {
		return
	}
	comp, ok := s.latestComponent(c)
	if !ok {
		return
	}
	refs := source.Collect(comp)
	s.deps.Sources.Refresh(refs)

	rejected := s.deps.Sources.Reject(comp, refs)
	if rejected > 0 && !s.persistComponent(c, comp, decision) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"rejected": rejected})
}

func (s *Server) handleSourcesUnlink(c *gin.Context) {
	decision, ok := parseDecision(c)
	if !ok {
		return
	}
	nodeID := c.Query("nodeId")
	if nodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nodeId is required"})
		return
	}
	comp, ok := s.latestComponent(c)
	if !ok {
		return
	}
	if err := source.Unlink(comp, nodeID); err != nil {
		s.fail(c, err)
		return
	}
	if !s.persistComponent(c, comp, decision) {
		return
	}
	c.Status(http.StatusNoContent)
}

// handlePublish stores a child node of the document as a standalone
// repository subcomponent and links the live child back to it.
func (s *Server) handlePublish(c *gin.Context) {
	decision, ok := parseDecision(c)
	if !ok {
		return
	}
	nodeID := c.Query("nodeId")
	if nodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nodeId is required"})
		return
	}
	comp, ok := s.latestComponent(c)
	if !ok {
		return
	}
	node := component.Resolve(comp).FindDescendant(nodeID)
	if node == nil {
		s.fail(c, source.ErrStaleReference)
		return
	}

	doc, err := s.deps.Store.PublishSubcomponent(node.Component)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !s.persistComponent(c, comp, decision) {
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// includeBody positions an inclusion: target is where the clone's reference
// point should land, parent anchors the offset math.
type includeBody struct {
	Target *geo.Coordinate `json:"target"`
	Parent geo.Coordinate  `json:"parent"`
}

// handleInclude hands out a fresh-id clone of the document's latest content,
// source-linked and optionally re-anchored, for the caller to paste into a
// tree. Bumps the document's includes counter.
func (s *Server) handleInclude(c *gin.Context) {
	if !isComponentCollection(c.Param("collection")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only component documents can be included"})
		return
	}
	var body includeBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	clone, err := s.deps.Store.IncludeFromRepository(c.Param("id"), body.Target, body.Parent)
	if err != nil {
		s.fail(c, err)
		return
	}
	text, err := codec.Write(clone)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"component": text})
}
