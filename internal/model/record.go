package model

// StatusActive is the only status this system ever assigns. Records are never
// demoted automatically; an operator edits the stored state out-of-band if a
// listing has to go away.
const StatusActive = "active"

// Record is the authoritative, persistent form of a listing. One record per
// external id; external_id and, once set, je_reference are write-once.
type Record struct {
	ExternalID  string `json:"external_id"`
	Status      string `json:"status"`
	FirstSeen   string `json:"first_seen"`
	LastSeen    string `json:"last_seen"`
	MissingRuns int    `json:"missing_runs"`

	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Price       string   `json:"price"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Year        string   `json:"year"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Location    Location `json:"location"`

	// Raw shadows the most recently merged scraped attributes. The exporter
	// falls back to it when a normalized field is empty. The normalized
	// brand/model/year/images/location/title/url are written back into it
	// after every merge so the two views cannot diverge.
	Raw map[string]any `json:"raw,omitempty"`

	// JEReference is the identifier the downstream feed consumer keys on.
	// Assigned at most once; regenerating it would make adverts disappear
	// and reappear on the consumer side.
	JEReference string `json:"je_reference,omitempty"`
}

// RawStr returns a string-typed value from the raw shadow, or "".
func (r *Record) RawStr(key string) string {
	return Scraped(r.Raw).Str(key)
}

// Inventory maps external id to record. The map only ever grows; a
// reconciliation run never removes entries.
type Inventory map[string]*Record
