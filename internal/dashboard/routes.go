package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bekzodr/studytrack/internal/board"
	"github.com/bekzodr/studytrack/internal/models"
	"github.com/bekzodr/studytrack/internal/store"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, st *store.Store, boards *board.Aggregator) {
	router.GET("/healthz", handleHealth())
	router.GET("/api/board", handleCurrentBoard(boards))
	router.GET("/api/board/:date", handleHistoricalBoard(st, boards))
	router.POST("/api/post-now", handlePostNow(st))
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// handleCurrentBoard serves the live board, uncommitted session time
// included.
func handleCurrentBoard(boards *board.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := boards.Build(time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// handleHistoricalBoard serves the stored-only board for a YYYY-MM-DD date.
func handleHistoricalBoard(st *store.Store, boards *board.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("date")
		ref, err := time.ParseInLocation(store.DateFormat, raw, st.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		snap, err := boards.BuildFor(ref)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// handlePostNow flags a manual leaderboard post. The daemon consumes the
// flag on its next pass; the scheduled daily post is unaffected.
func handlePostNow(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.SetMeta(models.MetaPostNow, "1"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "post scheduled"})
	}
}
