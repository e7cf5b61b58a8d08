package types

const ContextUserKey = "user"

// DefaultAllowedOrigins are the development front-end origins accepted by
// CORS and the websocket upgrader when none are configured.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}
