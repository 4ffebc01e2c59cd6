package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/youruser/postcardapp/internal/assets"
	"github.com/youruser/postcardapp/internal/catalog"
	imagepkg "github.com/youruser/postcardapp/internal/image"
	"github.com/youruser/postcardapp/internal/postcard"
	"github.com/youruser/postcardapp/internal/session"
)

// Handlers serves the postcard API. Every field is required.
type Handlers struct {
	Catalog      *catalog.Catalog
	Renderer     *imagepkg.Renderer
	Postcards    *postcard.Store
	Sessions     session.Store
	Conversation *session.Conversation
	PublicURL    string
	Log          *slog.Logger
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type stageInfo struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Align  string `json:"align"`
}

type templateInfo struct {
	Index  int         `json:"index"`
	Stages []stageInfo `json:"stages"`
}

func (h *Handlers) listTemplates(c *gin.Context) {
	out := make([]templateInfo, 0, len(h.Catalog.Templates))
	for _, idx := range h.Catalog.Indices() {
		t, _ := h.Catalog.Template(idx)
		info := templateInfo{Index: t.Index}
		for _, s := range t.Stages {
			info.Stages = append(info.Stages, stageInfo{ID: s.ID, Prompt: s.Prompt, Align: s.Align})
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "templates": out})
}

// previews returns one PNG with every catalog preview on it.
func (h *Handlers) previews(c *gin.Context) {
	sheet, err := h.Renderer.PreviewSheet(h.Catalog)
	if err != nil {
		h.fail(c, err)
		return
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, sheet, imaging.PNG); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// renderTemplate draws a template with the posted texts, stores the result
// and returns the PNG.
func (h *Handlers) renderTemplate(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template index must be a number"})
		return
	}
	tpl, ok := h.Catalog.Template(index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	var req struct {
		Texts map[string]string `json:"texts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	texts := make(imagepkg.TextBindings, len(req.Texts))
	for id, text := range req.Texts {
		texts[id] = h.Conversation.Clean(text)
	}

	p, err := h.render(tpl, texts)
	if err != nil {
		h.fail(c, err)
		return
	}
	path, err := h.Postcards.ImagePath(p.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("X-Postcard-Id", p.ID)
	if len(p.Warnings) > 0 {
		c.Header("X-Fit-Warnings", strconv.Itoa(len(p.Warnings)))
	}
	c.File(path)
}

type chatRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type postcardLinks struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	QRURL string `json:"qr_url"`
}

// chat feeds one user message into that user's conversation.
func (h *Handlers) chat(c *gin.Context) {
	peer := strings.TrimSpace(c.Param("peer"))
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	s, found, err := h.Sessions.Load(ctx, peer)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		s = session.New(peer, strings.TrimSpace(req.Name))
	}

	out, err := h.Conversation.Handle(s, req.Text)
	if err != nil {
		h.Log.Error("conversation failed", "peer", peer, "err", err)
		h.saveSession(c, s)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}

	resp := gin.H{}
	replies := out.Replies
	for _, r := range replies {
		if r.ShowPreviews {
			resp["previews_url"] = h.url("/api/previews")
		}
	}
	if out.Render != nil {
		tpl, ok := h.Catalog.Template(out.Render.Template)
		if !ok {
			h.Conversation.Finish(s)
			h.saveSession(c, s)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "template not found"})
			return
		}
		p, err := h.render(tpl, out.Render.Texts)
		if err != nil {
			h.saveSession(c, s)
			h.fail(c, err)
			return
		}
		resp["postcard"] = h.links(p.ID)
		replies = append(replies, session.Reply{Text: "Your postcard is ready!"})
		h.Conversation.Finish(s)
	}
	if !h.saveSession(c, s) {
		return
	}
	resp["state"] = s.State.String()
	resp["replies"] = replies
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) getPostcard(c *gin.Context) {
	path, err := h.Postcards.ImagePath(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.File(path)
}

func (h *Handlers) postcardText(c *gin.Context) {
	p, err := h.Postcards.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.String(http.StatusOK, postcard.ExportText(*p))
}

// postcardQR returns a QR code linking to the postcard image.
func (h *Handlers) postcardQR(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Postcards.ImagePath(id); err != nil {
		h.fail(c, err)
		return
	}
	size := 256
	if v := c.Query("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 64 && n <= 2048 {
			size = n
		}
	}
	b, err := imagepkg.GenerateQRPNG(h.url("/api/postcards/"+id), size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// render draws tpl and stores the result.
func (h *Handlers) render(tpl *catalog.Template, texts imagepkg.TextBindings) (*postcard.Postcard, error) {
	res, err := h.Renderer.Render(tpl, texts)
	if err != nil {
		return nil, err
	}
	p := &postcard.Postcard{Template: tpl.Index, Texts: texts}
	for _, w := range res.Warnings {
		p.Warnings = append(p.Warnings, w.Error())
		h.Log.Warn("postcard text cropped", "template", tpl.Index, "stage", w.Stage, "scale", w.Scale)
	}
	if err := h.Postcards.Save(p, res.Image); err != nil {
		return nil, err
	}
	h.Log.Info("postcard rendered", "id", p.ID, "template", tpl.Index)
	return p, nil
}

func (h *Handlers) saveSession(c *gin.Context, s *session.Session) bool {
	if err := h.Sessions.Save(c.Request.Context(), s); err != nil {
		h.fail(c, err)
		return false
	}
	return true
}

func (h *Handlers) links(id string) postcardLinks {
	return postcardLinks{
		ID:    id,
		URL:   h.url("/api/postcards/" + id),
		QRURL: h.url("/api/postcards/" + id + "/qr"),
	}
}

func (h *Handlers) url(path string) string {
	return strings.TrimSuffix(h.PublicURL, "/") + path
}

// fail maps an error to its status code.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var (
		missing   *imagepkg.MissingBindingError
		align     *imagepkg.InvalidAlignmentError
		colorErr  *imagepkg.ColorParseError
		fontErr   *imagepkg.FontResolutionError
		transform *imagepkg.InvalidTransformError
		notFound  *assets.NotFoundError
	)
	switch {
	case errors.As(err, &missing):
		status = http.StatusBadRequest
	case errors.Is(err, postcard.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &notFound):
		// missing font file or base image
		status = http.StatusInternalServerError
	case errors.As(err, &align), errors.As(err, &colorErr), errors.As(err, &fontErr), errors.As(err, &transform):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
