package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: eventhive:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_SHORT = 6 * time.Hour

	TTL_SEMI_STATIC_QUICK = 15 * time.Minute

	TTL_DYNAMIC_SHORT = 5 * time.Minute
	TTL_DYNAMIC_QUICK = 2 * time.Minute

	// seat counters move with every booking
	TTL_REALTIME_SHORT = 30 * time.Second
)

const (
	CACHE_PREFIX = "eventhive"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST      = CACHE_PREFIX + ":events:list"            // + :page:X:limit:Y:category:Z:search:Q
	CACHE_KEY_EVENTS_ORGANIZER = CACHE_PREFIX + ":events:organizer:email:" // + organizer email
	CACHE_KEY_EVENT_DETAIL     = CACHE_PREFIX + ":events:detail:uuid:"     // + event-id
)

const (
	TTL_EVENT_LIST      = TTL_DYNAMIC_QUICK
	TTL_EVENT_ORGANIZER = TTL_DYNAMIC_SHORT
	TTL_EVENT_DETAIL    = TTL_REALTIME_SHORT
)

// ================== USERS MODULE ==================

const (
	CACHE_KEY_USER_ROLE = CACHE_PREFIX + ":users:role:email:" // + email
)

const (
	TTL_USER_ROLE = TTL_SEMI_STATIC_QUICK
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EVENT_LISTS     = CACHE_PREFIX + ":events:list*"
	PATTERN_INVALIDATE_EVENT_ORGANIZER = CACHE_PREFIX + ":events:organizer:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildEventListKey -> "eventhive:events:list:page:1:limit:10:category:music:search:jazz"
func BuildEventListKey(page, limit int, category, search string) string {
	return fmt.Sprintf("%s:page:%d:limit:%d:category:%s:search:%s", CACHE_KEY_EVENTS_LIST, page, limit, category, search)
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildOrganizerEventsKey(email string) string {
	return CACHE_KEY_EVENTS_ORGANIZER + email
}

func BuildUserRoleKey(email string) string {
	return CACHE_KEY_USER_ROLE + email
}
