package model

import "time"

// Settings captures the configuration a collation job ran with.
type Settings struct {
	Tokenizer    string `yaml:"tokenizer"`
	Normalizer   string `yaml:"normalizer"`
	Engine       string `yaml:"engine"`
	Segmentation bool   `yaml:"segmentation"`
}

// WitnessDigest identifies the content a witness was built from. Text is the
// content id of the witness' original token text.
type WitnessDigest struct {
	ID     string `yaml:"id"`
	Origin Path   `yaml:"origin"`
	Digest string `yaml:"digest"`
	Text   string `yaml:"text"`
}

// Job is one collation request: a set of witness sources plus settings.
type Job struct {
	Name     string
	Sources  []WitnessSource
	Settings Settings
}

// Report is the persisted outcome of a collation job.
type Report struct {
	Fingerprint string          `yaml:"fingerprint"`
	Name        string          `yaml:"name"`
	CreatedAt   time.Time       `yaml:"created_at"`
	Settings    Settings        `yaml:"settings"`
	Sources     []WitnessDigest `yaml:"sources"`
	Witnesses   []Witness       `yaml:"witnesses"`
	Collation   Collation       `yaml:"collation"`
}
