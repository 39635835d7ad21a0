package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfessionLister interface {
	List() []string
}

type CatalogHandler struct {
	professions ProfessionLister
}

func NewCatalogHandler(p ProfessionLister) *CatalogHandler {
	return &CatalogHandler{professions: p}
}

func (h *CatalogHandler) Professions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"professions": h.professions.List()})
}
