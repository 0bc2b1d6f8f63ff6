package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chero-kobuleti/menu/internal/auth"
	"github.com/chero-kobuleti/menu/internal/store"
	"github.com/chero-kobuleti/menu/pkg/types"
)

func (s *Server) getMenu(c *gin.Context) {
	lang, err := types.ParseLocale(c.Query("lang"))
	if err != nil {
		lang = types.DefaultLocale
	}
	cats, err := s.store.PublicMenu(c.Request.Context(), lang)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=30")
	c.JSON(http.StatusOK, gin.H{"lang": lang, "categories": cats})
}

func (s *Server) login(c *gin.Context) {
	if !s.logins.allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "Too many attempts"})
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if !s.bind(c, &body) {
		return
	}

	if err := s.auth.CheckPassword(body.Password); err != nil {
		s.log.Info("admin login rejected", zap.String("ip", c.ClientIP()), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Invalid password"})
		return
	}
	token, _, err := s.auth.Issue()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(s.auth.SessionTTL().Seconds()), "/", "", s.opts.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", s.opts.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// bind decodes the JSON body into v, reporting a malformed body as a
// validation error.
func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.fail(c, fmt.Errorf("%w: request body: %w", types.ErrValidation, err))
		return false
	}
	return true
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// confirmed reports whether the confirm query parameter is true.
func confirmed(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.Query("confirm"))
	return err == nil && v
}

type statusRequest struct {
	ID     string       `json:"id"`
	Status types.Status `json:"status"`
}

type reorderRequest struct {
	CategoryID string   `json:"categoryId"`
	OrderedIDs []string `json:"orderedIds"`
}

func (s *Server) listCategories(c *gin.Context) {
	doc, err := s.store.LoadCategories(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) upsertCategory(c *gin.Context) {
	var in store.CategoryInput
	if !s.bind(c, &in) {
		return
	}
	cat, err := s.store.UpsertCategory(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "category": cat})
}

func (s *Server) reorderCategories(c *gin.Context) {
	var in reorderRequest
	if !s.bind(c, &in) {
		return
	}
	if err := s.store.ReorderCategories(c.Request.Context(), in.OrderedIDs); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) replaceCategories(c *gin.Context) {
	var in struct {
		Items []types.Category `json:"items"`
	}
	if !s.bind(c, &in) {
		return
	}
	if in.Items == nil {
		s.fail(c, fmt.Errorf("%w: missing items", types.ErrValidation))
		return
	}
	if err := s.store.ReplaceCategories(c.Request.Context(), in.Items); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) setCategoryStatus(c *gin.Context) {
	var in statusRequest
	if !s.bind(c, &in) {
		return
	}
	if err := s.store.SetCategoryStatus(c.Request.Context(), in.ID, in.Status); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteCategory(c *gin.Context) {
	if !confirmed(c) {
		s.fail(c, fmt.Errorf("%w: deleting category %s", types.ErrConfirmationRequired, c.Param("id")))
		return
	}
	if err := s.store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) listDishes(c *gin.Context) {
	doc, err := s.store.LoadDishes(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) upsertDish(c *gin.Context) {
	var in store.DishInput
	if !s.bind(c, &in) {
		return
	}
	dish, err := s.store.UpsertDish(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dish": dish})
}

func (s *Server) reorderDishes(c *gin.Context) {
	var in reorderRequest
	if !s.bind(c, &in) {
		return
	}
	if err := s.store.ReorderDishes(c.Request.Context(), in.CategoryID, in.OrderedIDs); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) bulkDishes(c *gin.Context) {
	var in struct {
		CategoryID string               `json:"categoryId"`
		Items      []store.DishBulkItem `json:"items"`
	}
	if !s.bind(c, &in) {
		return
	}
	if err := s.store.BulkUpdateDishes(c.Request.Context(), in.CategoryID, in.Items); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) setDishStatus(c *gin.Context) {
	var in statusRequest
	if !s.bind(c, &in) {
		return
	}
	if err := s.store.SetDishStatus(c.Request.Context(), in.ID, in.Status); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) setDishPhoto(c *gin.Context) {
	var in struct {
		DishID string `json:"dishId"`
	}
	if !s.bind(c, &in) {
		return
	}
	if in.DishID == "" {
		s.fail(c, fmt.Errorf("%w: missing dishId", types.ErrValidation))
		return
	}
	photo, err := s.store.SetDishPhoto(c.Request.Context(), in.DishID)
	if err != nil {
		s.fail(c, err)
		return
	}
	prefix := strings.TrimRight(s.store.Config().UploadsURL, "/") + "/"
	c.JSON(http.StatusOK, gin.H{"ok": true, "photo": types.Photo{
		Full:  prefix + photo.Full,
		Small: prefix + photo.Small,
	}})
}

func (s *Server) deleteDish(c *gin.Context) {
	if !confirmed(c) {
		s.fail(c, fmt.Errorf("%w: deleting dish %s", types.ErrConfirmationRequired, c.Param("id")))
		return
	}
	if err := s.store.DeleteDish(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) listHistory(c *gin.Context) {
	out := make(map[types.Kind][]types.Backup, len(types.Kinds))
	for _, kind := range types.Kinds {
		list, err := s.store.Catalog().List(kind)
		if err != nil {
			s.fail(c, err)
			return
		}
		out[kind] = list
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) restore(c *gin.Context) {
	var in struct {
		Kind    string `json:"kind"`
		File    string `json:"file"`
		Confirm bool   `json:"confirm"`
	}
	if !s.bind(c, &in) {
		return
	}
	kind, err := types.ParseKind(in.Kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	if in.File == "" {
		s.fail(c, fmt.Errorf("%w: missing file", types.ErrValidation))
		return
	}
	if !in.Confirm {
		s.fail(c, fmt.Errorf("%w: restoring %s", types.ErrConfirmationRequired, in.File))
		return
	}
	safety, err := s.store.Catalog().Restore(c.Request.Context(), kind, in.File)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "safetyBackup": safety})
}

func (s *Server) prune(c *gin.Context) {
	var in struct {
		Kind string `json:"kind"`
	}
	if !s.bind(c, &in) {
		return
	}
	kind, err := types.ParseKind(in.Kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	removed, err := s.store.Catalog().Prune(c.Request.Context(), kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": len(removed)})
}
