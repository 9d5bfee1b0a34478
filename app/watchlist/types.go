package watchlist

// Entry types.
const (
	EntryTypePerson = "person"
	EntryTypeOrg    = "org"
	EntryTypeRSS    = "rss"
)

// Entry is one tracked person, organization or feed. Every non-empty handle
// seeds the corresponding source's query list.
type Entry struct {
	Name           string `yaml:"name"`
	EntryType      string `yaml:"entry_type"`
	Lab            string `yaml:"lab,omitempty"`
	XHandle        string `yaml:"x_handle,omitempty"`
	Website        string `yaml:"website,omitempty"`
	YouTubeChannel string `yaml:"youtube_channel,omitempty"`
	RSSURL         string `yaml:"rss_url,omitempty"`
}

type watchlistFile struct {
	Entries []Entry `yaml:"entries"`
}

// XHandles returns the X handles of all entries that have one.
func XHandles(entries []Entry) []string {
	return collect(entries, func(e Entry) string { return e.XHandle })
}

// YouTubeChannels returns the channel URLs of all entries that have one.
func YouTubeChannels(entries []Entry) []string {
	return collect(entries, func(e Entry) string { return e.YouTubeChannel })
}

// Websites returns the websites of all entries that have one.
func Websites(entries []Entry) []string {
	return collect(entries, func(e Entry) string { return e.Website })
}

// RSSFeeds returns the feed URLs of all entries that have one.
func RSSFeeds(entries []Entry) []string {
	return collect(entries, func(e Entry) string { return e.RSSURL })
}

func collect(entries []Entry, field func(Entry) string) []string {
	var values []string
	for _, entry := range entries {
		if value := field(entry); value != "" {
			values = append(values, value)
		}
	}
	return values
}
