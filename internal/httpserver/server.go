// internal/httpserver/server.go
//
// HTTP transport for the word-tile engine.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/lexicon".
//   - Game endpoints: POST /game/new opens a session and returns its handle;
//     the other /game/* routes require the handle (Bearer header or cookie).
//   - Errors are JSON objects {"error": "..."}.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Handlers only forward events to game.Engine and return what it produced.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/daily"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/game"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexicon"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/store"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/validate"
)

// Options holds transport settings.
type Options struct {
	ClientOrigin   string
	CookieName     string
	SecureCookies  bool
	DailySalt      string
	LetterOptions  []letters.Option // applied to daily tiles
	HandlerTimeout time.Duration
}

// Server bundles the router, engine, session store and token issuer.
type Server struct {
	r      *chi.Mux
	engine *game.Engine
	store  store.Store
	lex    *lexicon.Index
	tokens *Tokens
	opts   Options
	now    func() time.Time
}

// New constructs a Server, installs middleware and registers routes.
func New(eng *game.Engine, st store.Store, lex *lexicon.Index, tokens *Tokens, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "wordtiles_session"
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 10 * time.Second
	}
	s := &Server{r: chi.NewRouter(), engine: eng, store: st, lex: lex, tokens: tokens, opts: opts, now: time.Now}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.HandlerTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "wordtiles-go",
			"endpoints": []string{
				"/health", "POST /game/new", "GET /game/state", "POST /game/submit",
				"POST /game/reveal", "POST /game/restart", "/debug/lexicon",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/lexicon", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"lexicon": s.lex.Stats(), "sessions": s.store.Len()})
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/game/state", s.handleState)
		r.Post("/game/submit", s.handleSubmit)
		r.Post("/game/reveal", s.handleReveal)
		r.Post("/game/restart", s.handleRestart)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start serves HTTP on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

type ctxSessionKey struct{}

// requireSession resolves the session handle and injects the session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.bearerOrCookie(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		id, err := s.tokens.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "load_failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *game.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*game.Session)
	return sess
}

// bearerOrCookie extracts the handle from the Authorization header or the cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// setSessionCookie writes the handle cookie.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookies {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Letters string `json:"letters"` // optional fixed tiles, e.g. "AEICTRSN"
	Daily   bool   `json:"daily"`   // today's shared tiles
}

type gameRes struct {
	Token   string     `json:"token,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
	Game    game.View  `json:"game"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	var fixed letters.Set
	switch {
	case req.Letters != "":
		set, err := letters.Parse(req.Letters)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		fixed = set
	case req.Daily:
		fixed = daily.Letters(s.now(), s.opts.DailySalt, s.opts.LetterOptions...)
	}

	// A new game replaces the caller's previous session.
	if raw := s.bearerOrCookie(r); raw != "" {
		if old, err := s.tokens.Parse(raw); err == nil {
			if err := s.store.Delete(r.Context(), old); err != nil {
				log.Warn().Err(err).Str("session", old).Msg("delete replaced session")
			}
		}
	}

	sess := s.engine.NewGame(r.Context(), fixed)
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.tokens.Sign(sess.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, gameRes{Token: tok, Expires: &exp, Game: sess.View()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gameRes{Game: sessionFrom(r).View()})
}

type submitReq struct {
	Word string `json:"word"`
}

type submitRes struct {
	validate.Verdict
	Game game.View `json:"game"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	verdict, view, err := s.engine.Submit(r.Context(), sessionFrom(r), req.Word)
	switch {
	case errors.Is(err, game.ErrInactive), errors.Is(err, game.ErrStale):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "game": view})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, submitRes{Verdict: verdict, Game: view})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	msg, view, err := s.engine.Reveal(sessionFrom(r))
	if errors.Is(err, game.ErrInactive) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "game": view})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "game": view})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gameRes{Game: s.engine.Restart(r.Context(), sessionFrom(r))})
}

// ------------------------------- util --------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
