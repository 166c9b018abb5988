package catalog

// Entry is one reference-data row (a department or a document category).
type Entry struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// StatusInfo carries display metadata for one lifecycle status.
// Step 0 marks the out-of-band RETURNED branch.
type StatusInfo struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Step  int    `yaml:"step" json:"step"`
}

// Catalog is the full reference-data document as stored in YAML.
type Catalog struct {
	Departments []Entry      `yaml:"departments" json:"departments"`
	Categories  []Entry      `yaml:"categories" json:"categories"`
	Statuses    []StatusInfo `yaml:"statuses" json:"statuses"`
}
