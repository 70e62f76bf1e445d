package api

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crisis-assist/internal/session"
)

const sessionCookie = "crisis_session"

// lookupSession returns the caller's session, or nil if it has none yet.
// Read-only routes use it so that cookie-less requests store nothing.
func lookupSession(c *gin.Context, d Deps) *session.Session {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	sess, _ := d.Sessions.Lookup(id)
	return sess
}

// sessionFor returns the caller's session, creating it and setting its
// cookie on first use.
func sessionFor(c *gin.Context, d Deps) *session.Session {
	id, _ := c.Cookie(sessionCookie)
	sess := d.Sessions.Get(id)
	if sess.ID != id {
		cookiePath := d.Config.Server.Subpath
		if cookiePath == "" {
			cookiePath = "/"
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.ID, 0, cookiePath, "", false, true)
	}
	return sess
}

// submit starts answering query for sess. The task outlives the request.
func submit(c *gin.Context, d Deps, sess *session.Session, query string) (*session.Task, error) {
	task, err := sess.Submit(context.WithoutCancel(c.Request.Context()), query)
	if err != nil {
		d.Logger.Info("submission rejected", zap.String("session", sess.ID), zap.Error(err))
	}
	return task, err
}

type pendingView struct {
	ID      string `json:"id"`
	Query   string `json:"query"`
	Status  string `json:"status"`
	Elapsed string `json:"elapsed"`
}

func pendingOf(sess *session.Session) *pendingView {
	if sess == nil {
		return nil
	}
	t := sess.Pending()
	if t == nil {
		return nil
	}
	return &pendingView{ID: t.ID, Query: t.Query, Status: string(t.Status()), Elapsed: formatSeconds(t.Elapsed())}
}

func messagesOf(sess *session.Session) []session.ChatMessage {
	if sess == nil {
		return []session.ChatMessage{}
	}
	return sess.Transcript.Messages()
}

func renderChat(c *gin.Context, d Deps, sess *session.Session, status int, notice string) {
	c.HTML(status, "chat.html", page(d, "chat", gin.H{
		"messages": messagesOf(sess),
		"pending":  pendingOf(sess),
		"samples":  session.SampleQuestions,
		"notice":   notice,
	}))
}

// GET /chat
func chatPageHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderChat(c, d, lookupSession(c, d), http.StatusOK, "")
	}
}

// POST /chat
func chatSubmitHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub session.Submission
		if err := c.ShouldBind(&sub); err != nil {
			renderChat(c, d, lookupSession(c, d), http.StatusBadRequest, "Invalid submission.")
			return
		}
		query, ok := sub.Query()
		if !ok {
			renderChat(c, d, lookupSession(c, d), http.StatusBadRequest, "Type a message or pick a sample question.")
			return
		}
		sess := sessionFor(c, d)
		if _, err := submit(c, d, sess, query); errors.Is(err, session.ErrBusy) {
			renderChat(c, d, sess, http.StatusConflict, "Please wait for the current answer.")
			return
		}
		c.Redirect(http.StatusSeeOther, path.Join("/", d.Config.Server.Subpath, "chat"))
	}
}

// POST /chat/cancel
func chatCancelHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := lookupSession(c, d)
		if sess == nil {
			c.Redirect(http.StatusSeeOther, path.Join("/", d.Config.Server.Subpath, "chat"))
			return
		}
		if t := sess.Pending(); t != nil {
			t.Cancel()
			<-t.Done()
		}
		c.Redirect(http.StatusSeeOther, path.Join("/", d.Config.Server.Subpath, "chat"))
	}
}

// GET /api/chat/messages
func listMessagesHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := lookupSession(c, d)
		c.JSON(http.StatusOK, gin.H{
			"messages": messagesOf(sess),
			"pending":  pendingOf(sess),
		})
	}
}

// POST /api/chat
func sendMessageHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub session.Submission
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
			return
		}
		query, ok := sub.Query()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing message"})
			return
		}
		sess := sessionFor(c, d)
		task, err := submit(c, d, sess, query)
		if errors.Is(err, session.ErrBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"task_id": task.ID, "status": task.Status()})
	}
}
