package blogposts

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// updateRequest is the PUT body: a full post record. Only id is checked;
// publishDate is ignored because the store owns it.
type updateRequest struct {
	ID string `json:"id"`
	PostFields
}

var bodyBinder = &echo.DefaultBinder{}

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Store.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleCreatePost(c echo.Context) error {
	var fields PostFields
	if err := bodyBinder.BindBody(c, &fields); err != nil {
		return err
	}
	post, err := a.Store.Create(c.Request().Context(), fields)
	if err != nil {
		return toHTTPError(err)
	}
	c.Logger().Debugf("created blog post %s", post.ID)
	c.Response().Header().Set(echo.HeaderLocation, "/blog-posts/"+post.ID)
	return c.JSON(http.StatusCreated, post)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	id := c.Param("id")
	var req updateRequest
	if err := bodyBinder.BindBody(c, &req); err != nil {
		return err
	}
	if req.ID != "" && req.ID != id {
		return toHTTPError(&MismatchError{PathID: id, BodyID: req.ID})
	}
	if err := a.Store.Update(c.Request().Context(), id, req.PostFields); err != nil {
		return toHTTPError(err)
	}
	c.Logger().Debugf("updated blog post %s", id)
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleDeletePost(c echo.Context) error {
	id := c.Param("id")
	if err := a.Store.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	c.Logger().Debugf("deleted blog post %s", id)
	return c.NoContent(http.StatusNoContent)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleIndex(c echo.Context) error {
	posts, err := a.Store.List(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, IndexPage(a.Config, posts))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.List(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

// toHTTPError maps store errors onto client errors. Anything unrecognized is
// returned unchanged and ends up as a 500.
func toHTTPError(err error) error {
	var verr *ValidationError
	var nerr *NotFoundError
	var merr *MismatchError
	switch {
	case errors.As(err, &verr), errors.As(err, &merr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.As(err, &nerr):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	}
	return err
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
