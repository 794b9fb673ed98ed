package discord

// User 是 GET /users/@me 的回應
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	GlobalName    *string `json:"global_name"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	Email         string  `json:"email"`
	Verified      bool    `json:"verified"`
}
