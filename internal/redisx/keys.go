package redisx

import "time"

const (
	// Id counter per entity: seq:{users|products|orders} -> last id
	KeySeq = "seq:%s"

	// Dedup of consumed events: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
