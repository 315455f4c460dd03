package websocket

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
)

// accessClaims mirrors the access token the HTTP API signs. The relay
// runs outside iris, so it verifies tokens with golang-jwt directly.
type accessClaims struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Server is the standalone relay listener. It shares the process with
// the HTTP API but listens on its own port (CHAT_PORT).
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	secret   []byte
}

// NewServer builds the relay. allowedOrigins is the cross-origin
// allow-list; an empty list allows any origin (development mode).
func NewServer(store MessageStore, allowedOrigins []string, secret []byte) *Server {
	hub := NewHub(store)
	go hub.Run()

	return &Server{
		hub:    hub,
		secret: secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range allowedOrigins {
					if strings.EqualFold(strings.TrimSpace(allowed), origin) {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleConnection upgrades an authenticated request and starts the
// connection's pumps.
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "token is required", http.StatusUnauthorized)
		return
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.ID == 0 {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("error upgrading connection: %v", err)
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: claims.ID,
	}
	client.hub.register <- client

	go client.readPump()
	go client.writePump()
}

// ListenAndServe runs the relay on its own address until the process
// exits.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleConnection)
	log.Println("chat relay listening on", addr)
	return http.ListenAndServe(addr, mux)
}
