package crisisctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSeedConfig reads a resource inventory file. actor_id falls back to
// CRISIS_ACTOR_ID.
func LoadSeedConfig(path string) (*SeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg SeedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:8090"
	}
	if cfg.ActorID == "" {
		cfg.ActorID = os.Getenv("CRISIS_ACTOR_ID")
	}
	if cfg.ActorID == "" {
		return nil, fmt.Errorf("no actor: set actor_id in config or CRISIS_ACTOR_ID env var")
	}

	seen := map[string]bool{}
	for i, r := range cfg.Resources {
		if r.Name == "" {
			return nil, fmt.Errorf("resource %d: name is required", i)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("resource %q listed twice", r.Name)
		}
		seen[r.Name] = true
	}
	return &cfg, nil
}

// Seed registers every resource in the inventory that the API does not know
// yet and brings the availability of existing ones in line. Resources in use
// are left alone.
func Seed(ctx context.Context, cfg *SeedConfig, out io.Writer) error {
	client := NewClient(cfg.APIURL, cfg.ActorID)

	existing, err := client.ListResources(ctx)
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}

	for _, r := range cfg.Resources {
		if cur, ok := existing[r.Name]; ok {
			if r.Availability == "" || r.Availability == cur.Availability {
				fmt.Fprintf(out, "Resource %q: exists (%s, skipping)\n", r.Name, cur.ID)
				continue
			}
			if cur.Availability == "in_use" {
				fmt.Fprintf(out, "Resource %q: in use, not changing availability to %s\n", r.Name, r.Availability)
				continue
			}
			if _, err := client.Put(ctx, "/resources/"+cur.ID+"/availability", map[string]any{
				"availability": r.Availability,
			}); err != nil {
				return fmt.Errorf("update resource %q: %w", r.Name, err)
			}
			fmt.Fprintf(out, "Resource %q: availability %s -> %s\n", r.Name, cur.Availability, r.Availability)
			continue
		}

		fmt.Fprintf(out, "Creating resource %q...\n", r.Name)
		resp, err := client.Post(ctx, "/resources", map[string]any{
			"name":         r.Name,
			"category":     r.Category,
			"description":  r.Description,
			"location":     r.Location,
			"availability": r.Availability,
		})
		if err != nil {
			return fmt.Errorf("create resource %q: %w", r.Name, err)
		}
		id, err := extractID(resp)
		if err != nil {
			return fmt.Errorf("parse resource ID: %w", err)
		}
		fmt.Fprintf(out, "  Resource %q: %s created\n", r.Name, id)
	}

	return nil
}
