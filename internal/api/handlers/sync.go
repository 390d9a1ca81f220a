package handlers

import (
	"net/http"

	"catsync/internal/logger"
	"catsync/internal/sync"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	orchestrator *sync.Orchestrator
	logger       *logger.Logger
}

func NewSyncHandler(orchestrator *sync.Orchestrator, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Fetch runs one ingestion pass over the Rivile feed.
func (h *SyncHandler) Fetch(c *gin.Context) {
	summary, err := h.orchestrator.RunFetchOnce()
	if err != nil {
		// partial ingestion is acceptable; report what was done
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Push runs one sync pass against Shopify.
func (h *SyncHandler) Push(c *gin.Context) {
	summary, err := h.orchestrator.RunSyncOnce()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// RefData refreshes the cached Shopify locations and publications.
func (h *SyncHandler) RefData(c *gin.Context) {
	if err := h.orchestrator.RunRefDataOnce(); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
