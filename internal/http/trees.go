package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arkivist/heritage/internal/services"
)

type CreateTreeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// TreesController manages destination trees.
type TreesController struct {
	trees *services.TreeService
}

func NewTreesController(trees *services.TreeService) *TreesController {
	return &TreesController{trees: trees}
}

// Create handles POST /api/trees.
func (controller *TreesController) Create(c *gin.Context) {
	var req CreateTreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tree, err := controller.trees.Create(req.Name, req.Description)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusCreated, tree)
}

// List handles GET /api/trees.
func (controller *TreesController) List(c *gin.Context) {
	list, err := controller.trees.List()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"trees": list, "count": len(list)})
}

// Get handles GET /api/trees/:id.
func (controller *TreesController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid tree id"})
		return
	}

	tree, err := controller.trees.Get(uint(id))
	if err != nil {
		if isNotFound(err) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "tree not found"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, tree)
}
