package webhook

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// deliveryDeduper remembers webhook delivery IDs so GitHub redeliveries are
// processed once.
type deliveryDeduper struct {
	seen *cache.Cache
}

func newDeliveryDeduper(ttl time.Duration) *deliveryDeduper {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &deliveryDeduper{seen: cache.New(ttl, ttl)}
}

// markIfNew returns true if id has not been seen within the TTL, recording it.
func (d *deliveryDeduper) markIfNew(id string) bool {
	return d.seen.Add(id, struct{}{}, cache.DefaultExpiration) == nil
}

// forget drops id so a failed delivery can be retried.
func (d *deliveryDeduper) forget(id string) {
	d.seen.Delete(id)
}
