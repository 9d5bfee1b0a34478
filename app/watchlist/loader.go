package watchlist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the watchlist from the single configured path. A missing file
// is an error; there is no fallback path probing.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	var file watchlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist YAML: %w", err)
	}

	for i := range file.Entries {
		if file.Entries[i].EntryType == "" {
			file.Entries[i].EntryType = EntryTypePerson
		}
	}

	if err := validate(file.Entries); err != nil {
		return nil, fmt.Errorf("invalid watchlist: %w", err)
	}

	return file.Entries, nil
}

func validate(entries []Entry) error {
	validTypes := map[string]bool{
		EntryTypePerson: true,
		EntryTypeOrg:    true,
		EntryTypeRSS:    true,
	}

	for i, entry := range entries {
		if entry.Name == "" {
			return fmt.Errorf("entry at index %d has no name", i)
		}
		if !validTypes[entry.EntryType] {
			return fmt.Errorf("entry %q has invalid entry_type: %s", entry.Name, entry.EntryType)
		}
		if entry.XHandle == "" && entry.Website == "" && entry.YouTubeChannel == "" && entry.RSSURL == "" {
			return fmt.Errorf("entry %q has no handles; it would never produce a query", entry.Name)
		}
	}

	return nil
}
