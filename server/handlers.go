package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"swagger_interface_helper/editor"
	"swagger_interface_helper/generator"
	"swagger_interface_helper/page"
	"swagger_interface_helper/swagger"
)

type templateBody struct {
	Template string `json:"template"`
}

type sessionCreateReq struct {
	Content  string `json:"content"`
	ReadOnly bool   `json:"read_only"`
}

type sessionResp struct {
	SessionID string    `json:"session_id"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// generateReq 可以按 method/path 从上游文档生成，也可以直接提交页面上的接口 HTML。
type generateReq struct {
	Method        string `json:"method"`
	Path          string `json:"path"`
	Title         string `json:"title"`
	Documentation string `json:"documentation"`
	RawHTML       string `json:"raw_html"`
}

type generateResp struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Code      string `json:"code"`
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocument(r.Context())
	if err != nil {
		jsonErr(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, doc.Operations())
}

func (s *Server) handleTemplateGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, templateBody{Template: s.agent.Template()})
}

func (s *Server) handleTemplatePut(w http.ResponseWriter, r *http.Request) {
	var req templateBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := s.templates.Set(generator.TemplateKey, req.Template); err != nil {
		log.Error().Err(err).Msg("save template failed")
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, req)
}

// handleTemplateDelete 删除模板后生成时按空模板处理。
func (s *Server) handleTemplateDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.Delete(generator.TemplateKey); err != nil {
		log.Error().Err(err).Msg("delete template failed")
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonErr(w, "invalid body", http.StatusBadRequest)
		return
	}
	sess, err := newSession(editor.Config{Content: req.Content, Language: "typescript", ReadOnly: req.ReadOnly})
	if err != nil {
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.sessions.set(sess)
	jsonOK(w, sessionResp{SessionID: sess.id, Value: sess.editor.Value(), CreatedAt: sess.created}, http.StatusCreated)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		jsonErr(w, "session not found", http.StatusNotFound)
	}
	return sess, ok
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, sessionResp{SessionID: sess.id, Value: sess.editor.Value(), CreatedAt: sess.created})
}

func (s *Server) handleSessionUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", http.StatusBadRequest)
		return
	}
	sess.editor.SetValue(req.Value)
	writeJSON(w, sessionResp{SessionID: sess.id, Value: sess.editor.Value(), CreatedAt: sess.created})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.remove(r.PathValue("id"))
	if !ok {
		jsonErr(w, "session not found", http.StatusNotFound)
		return
	}
	sess.close()
	if err := sess.editor.Destroy(); err != nil {
		log.Warn().Err(err).Str("session", sess.id).Msg("destroy editor")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionPanel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	out, err := sess.editor.Render()
	if err != nil {
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// handleGenerate 清空编辑器后发起一次生成；片段累积写入编辑器并推送给订阅者。
// 同一会话的多次生成互不排斥，最后写入的结果生效。
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", http.StatusBadRequest)
		return
	}
	data, status, err := s.resolveAPIData(r.Context(), req)
	if err != nil {
		jsonErr(w, err.Error(), status)
		return
	}

	sess.editor.SetValue("")
	sess.publish(streamMessage{Type: msgStart, Data: data.Title})

	var acc strings.Builder
	code, err := s.agent.GenerateInterface(r.Context(), data, func(fragment string) {
		acc.WriteString(fragment)
		sess.editor.SetValue(acc.String())
		sess.publish(streamMessage{Type: msgChunk, Data: fragment})
	})
	if err != nil {
		sess.editor.SetValue("")
		sess.publish(streamMessage{Type: msgError, Error: err.Error()})
		log.Warn().Err(err).Str("session", sess.id).Str("title", data.Title).Msg("generate failed")
		jsonErr(w, err.Error(), http.StatusBadGateway)
		return
	}
	sess.editor.SetValue(code)
	sess.publish(streamMessage{Type: msgDone, Data: code})
	writeJSON(w, generateResp{SessionID: sess.id, Title: data.Title, Code: code})
}

func (s *Server) resolveAPIData(ctx context.Context, req generateReq) (generator.ApiData, int, error) {
	if req.Method != "" && req.Path != "" {
		doc, err := s.loadDocument(ctx)
		if err != nil {
			return generator.ApiData{}, http.StatusBadGateway, err
		}
		data, err := doc.APIData(req.Method, req.Path)
		if errors.Is(err, swagger.ErrOperationNotFound) {
			return generator.ApiData{}, http.StatusNotFound, err
		}
		if err != nil {
			return generator.ApiData{}, http.StatusInternalServerError, err
		}
		return data, http.StatusOK, nil
	}

	data := generator.ApiData{Title: req.Title, Documentation: req.Documentation, RawHTML: req.RawHTML}
	if data.Documentation == "" && data.RawHTML != "" {
		text, err := page.ExtractText(data.RawHTML)
		if err != nil {
			return generator.ApiData{}, http.StatusBadRequest, err
		}
		data.Documentation = text
	}
	if data.Documentation == "" && data.RawHTML == "" && req.Title == "" {
		return generator.ApiData{}, http.StatusBadRequest, errors.New("method/path or api content required")
	}
	return data, http.StatusOK, nil
}

func (s *Server) loadDocument(ctx context.Context) (*swagger.Document, error) {
	if s.cfg.Upstream == "" {
		return nil, errors.New("upstream not configured")
	}
	return swagger.Fetch(ctx, s.client, s.cfg.Upstream+s.cfg.APIDocsPath)
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WS upgrade failed")
		return
	}
	ch, ok := sess.subscribe()
	if !ok {
		_ = conn.Close()
		return
	}
	log.Debug().Str("session", sess.id).Str("remote", r.RemoteAddr).Msg("WS connected")

	// Write pump
	go func() {
		defer conn.Close()
		ready, _ := json.Marshal(streamMessage{Type: msgReady, Data: sess.editor.Value()})
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if conn.WriteMessage(websocket.TextMessage, ready) != nil {
			return
		}
		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()
		for {
			select {
			case msg, ok := <-ch:
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if conn.WriteMessage(websocket.PingMessage, nil) != nil {
					return
				}
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			sess.unsubscribe(ch)
			return
		}
	}
}
