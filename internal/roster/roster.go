package roster

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Member is one recognized task assignee.
type Member struct {
	Name    string   `yaml:"name"`
	ID      string   `yaml:"id"`
	Aliases []string `yaml:"aliases,omitempty"`
}

type fileFormat struct {
	Members []Member `yaml:"members"`
}

// Roster maps recognized display names to staff identifiers. It is safe
// for concurrent use and can be swapped wholesale on reload.
type Roster struct {
	mu      sync.RWMutex
	members []Member
	index   map[string]Member
}

func New(members ...Member) *Roster {
	r := &Roster{}
	r.Replace(members)
	return r
}

func (r *Roster) Replace(members []Member) {
	cleaned := make([]Member, 0, len(members))
	index := map[string]Member{}
	for _, member := range members {
		member.Name = strings.TrimSpace(member.Name)
		member.ID = strings.TrimSpace(member.ID)
		if member.Name == "" || member.ID == "" {
			continue
		}
		cleaned = append(cleaned, member)
		index[key(member.Name)] = member
		for _, alias := range member.Aliases {
			if k := key(alias); k != "" {
				index[k] = member
			}
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return key(cleaned[i].Name) < key(cleaned[j].Name) })

	r.mu.Lock()
	r.members = cleaned
	r.index = index
	r.mu.Unlock()
}

// Lookup matches a display name or alias case-insensitively.
func (r *Roster) Lookup(name string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.index[key(name)]
	return member, ok
}

func (r *Roster) Members() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Names returns the display names joined for use in refusal replies.
func (r *Roster) Names() string {
	members := r.Members()
	names := make([]string, 0, len(members))
	for _, member := range members {
		names = append(names, member.Name)
	}
	return strings.Join(names, ", ")
}

// ParseCSV reads "Name=id,Other Name=id2" pairs.
func ParseCSV(raw string) ([]Member, error) {
	members := []Member{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, id, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid roster entry %q: expected name=id", part)
		}
		members = append(members, Member{Name: strings.TrimSpace(name), ID: strings.TrimSpace(id)})
	}
	return members, nil
}

func ParseYAML(data []byte) ([]Member, error) {
	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode roster yaml: %w", err)
	}
	for i, member := range parsed.Members {
		if strings.TrimSpace(member.Name) == "" || strings.TrimSpace(member.ID) == "" {
			return nil, fmt.Errorf("roster member %d: name and id are required", i)
		}
	}
	return parsed.Members, nil
}

func LoadFile(path string) ([]Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	return ParseYAML(data)
}

// Load merges file members with inline CSV members; inline entries win on
// name collisions.
func Load(path, inlineCSV string) ([]Member, error) {
	members := []Member{}
	if strings.TrimSpace(path) != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		members = append(members, fromFile...)
	}
	inline, err := ParseCSV(inlineCSV)
	if err != nil {
		return nil, err
	}
	seen := map[string]int{}
	for i, member := range members {
		seen[key(member.Name)] = i
	}
	for _, member := range inline {
		if i, ok := seen[key(member.Name)]; ok {
			members[i] = member
			continue
		}
		seen[key(member.Name)] = len(members)
		members = append(members, member)
	}
	return members, nil
}

func key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
