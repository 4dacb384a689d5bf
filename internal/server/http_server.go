package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KevDevLee/namens-tinder/internal/auth"
	"github.com/KevDevLee/namens-tinder/internal/config"
	svcErr "github.com/KevDevLee/namens-tinder/internal/errors"
	"github.com/KevDevLee/namens-tinder/internal/service/picker"
)

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type Router struct {
	picker *picker.Service
	auth   *auth.Service
	log    *slog.Logger
}

func NewRouter(pickerSvc *picker.Service, authSvc *auth.Service, log *slog.Logger) *Router {
	return &Router{picker: pickerSvc, auth: authSvc, log: log}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(r.log))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", r.signUp)
			authGroup.POST("/signin", r.signIn)
		}

		protected := v1.Group("")
		protected.Use(RequireAuth(r.auth))
		{
			protected.GET("/names", r.listNames)
			protected.POST("/names", r.addName)

			protected.POST("/decisions", r.recordDecision)
			protected.GET("/decisions/me", r.listMyDecisions)
			protected.GET("/decisions/partner", r.listPartnerDecisions)
			protected.DELETE("/decisions/:id", r.deleteDecision)
			protected.DELETE("/names/:name_id/decision", r.clearDecision)

			protected.GET("/matches", r.listMatches)
			protected.GET("/stats", r.stats)

			protected.GET("/preferences", r.getPreferences)
			protected.PUT("/preferences", r.savePreferences)
			protected.POST("/preferences/reload", r.consumeReload)

			sw := protected.Group("/swipe")
			{
				sw.POST("/start", r.startSwipe)
				sw.GET("", r.swipeCurrent)
				sw.POST("/drag", r.swipeDrag)
				sw.POST("/gesture", r.swipeGesture)
				sw.POST("/decide", r.swipeDecide)
				sw.POST("/complete", r.swipeComplete)
				sw.POST("/undo", r.swipeUndo)
			}
		}
	}
	return router
}

// StartHTTPServer serves handler on the configured address until ctx ends.
func StartHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server on %s: %w", srv.Addr, err)
	}
	return nil
}

func (r *Router) fail(c *gin.Context, err error) {
	code, msg := svcErr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		r.log.Error("request failed", "request_id", c.GetString(ctxRequestID), "err", err)
	}
	c.JSON(code, ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
}

func (r *Router) signUp(c *gin.Context) {
	var req picker.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	sess, err := r.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (r *Router) signIn(c *gin.Context) {
	var req picker.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	sess, err := r.auth.SignIn(c.Request.Context(), req)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (r *Router) listNames(c *gin.Context) {
	var req picker.ListNamesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c)
		return
	}
	resp, err := r.picker.ListNames(c.Request.Context(), req)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) addName(c *gin.Context) {
	var req picker.AddNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	row, err := r.picker.AddName(c.Request.Context(), claimsFrom(c).UserID, req.Name, req.Gender)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (r *Router) recordDecision(c *gin.Context) {
	var req picker.RecordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	row, err := r.picker.RecordDecision(c.Request.Context(), claimsFrom(c).UserID, req.NameID, req.Decision)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, picker.DecisionResponse{ID: row.ID, NameID: row.NameID, Decision: row.Decision})
}

func (r *Router) listMyDecisions(c *gin.Context) {
	out, err := r.picker.ListMyDecisions(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (r *Router) listPartnerDecisions(c *gin.Context) {
	out, err := r.picker.ListPartnerDecisions(c.Request.Context(), claimsFrom(c).Role)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func pathID(c *gin.Context, key string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: key + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (r *Router) deleteDecision(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := r.picker.DeleteDecision(c.Request.Context(), claimsFrom(c).UserID, id)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, picker.DecisionResponse{ID: row.ID, NameID: row.NameID, Decision: row.Decision})
}

func (r *Router) clearDecision(c *gin.Context) {
	nameID, ok := pathID(c, "name_id")
	if !ok {
		return
	}
	if err := r.picker.ClearDecision(c.Request.Context(), claimsFrom(c).UserID, nameID); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) listMatches(c *gin.Context) {
	claims := claimsFrom(c)
	out, err := r.picker.ListMatches(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (r *Router) stats(c *gin.Context) {
	out, err := r.picker.Stats(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (r *Router) getPreferences(c *gin.Context) {
	p, err := r.picker.GetPreferences(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (r *Router) savePreferences(c *gin.Context) {
	var req picker.PreferencesMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	p, err := r.picker.SavePreferences(c.Request.Context(), claimsFrom(c).UserID, req)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (r *Router) consumeReload(c *gin.Context) {
	reload, err := r.picker.ConsumeReload(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, picker.ReloadResponse{Reload: reload})
}

func (r *Router) swipeReply(c *gin.Context, resp picker.SwipeResponse, err error) {
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) startSwipe(c *gin.Context) {
	claims := claimsFrom(c)
	resp, err := r.picker.StartSwipe(c.Request.Context(), claims.UserID, claims.Role)
	r.swipeReply(c, resp, err)
}

func (r *Router) swipeCurrent(c *gin.Context) {
	resp, err := r.picker.SwipeCurrent(claimsFrom(c).UserID)
	r.swipeReply(c, resp, err)
}

func (r *Router) swipeDrag(c *gin.Context) {
	var req picker.SwipeDragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	resp, err := r.picker.SwipeDrag(claimsFrom(c).UserID, req)
	r.swipeReply(c, resp, err)
}

func (r *Router) swipeGesture(c *gin.Context) {
	var req picker.SwipeGestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	resp, err := r.picker.SwipeGesture(c.Request.Context(), claimsFrom(c).UserID, req)
	r.swipeReply(c, resp, err)
}

func (r *Router) swipeDecide(c *gin.Context) {
	var req picker.SwipeDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	resp, err := r.picker.SwipeDecide(c.Request.Context(), claimsFrom(c).UserID, req.Decision)
	r.swipeReply(c, resp, err)
}

func (r *Router) swipeComplete(c *gin.Context) {
	resp, err := r.picker.SwipeComplete(claimsFrom(c).UserID)
	r.swipeReply(c, resp, err)
}

func (r *Router) swipeUndo(c *gin.Context) {
	resp, err := r.picker.SwipeUndo(c.Request.Context(), claimsFrom(c).UserID)
	r.swipeReply(c, resp, err)
}
