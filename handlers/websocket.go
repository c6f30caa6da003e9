package handlers

import (
	"log"
	"net/http"
	"sync"
	"videoserver/models"
	"videoserver/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket admits the session into the owning user's fan-out group.
// Admission already passed credential verification in the auth router;
// a session that never gets here simply receives nothing.
func WebSocket(c *gin.Context, user *models.User) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer conn.Close()

	// Setup client. One writer mutex: fan-out publishes and the pong
	// reply below share the connection.
	var writeMutex sync.Mutex
	isConnected := true
	session := realtime.NewSession(func(data []byte) bool {
		writeMutex.Lock()
		defer writeMutex.Unlock()
		if !isConnected {
			return false
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Println("write err:", err)
			isConnected = false
			return false
		}
		return true
	})
	hub.Add(user.ID, session)
	defer hub.Remove(user.ID, session)
	// Main read cycle
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			writeMutex.Lock()
			isConnected = false
			writeMutex.Unlock()
			break
		}
		if string(message) == "ping" {
			writeMutex.Lock()
			_ = conn.WriteMessage(mt, []byte("pong"))
			writeMutex.Unlock()
		}
	}
}
