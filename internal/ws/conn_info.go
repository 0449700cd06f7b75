package ws

import "time"

type ConnInfo struct {
	ConnID      string
	UserID      int
	IP          string
	RequestID   string
	ConnectedAt time.Time
}
