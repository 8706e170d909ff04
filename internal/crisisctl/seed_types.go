package crisisctl

type SeedConfig struct {
	APIURL    string        `yaml:"api_url"`
	ActorID   string        `yaml:"actor_id"`
	Resources []ResourceDef `yaml:"resources"`
}

type ResourceDef struct {
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	Description  string `yaml:"description"`
	Location     string `yaml:"location"`
	Availability string `yaml:"availability"`
}
