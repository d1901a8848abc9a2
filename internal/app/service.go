package app

import (
	"io"

	"archaur/internal/adapters"
	"archaur/internal/ports"
)

// Service wires every collaborator Plan needs together. Grounded on
// the teacher's own Service struct (one field per port, a single
// constructor assembling the default adapters).
type Service struct {
	AurMetadata       ports.AurMetadataPort
	NativeRepo        ports.NativeRepoPort
	InstalledSnapshot ports.InstalledSnapshotPort
	GroupExpansion    ports.GroupExpansionPort
	Choice            ports.ChoicePort
	DevelVersion      ports.DevelVersionPort
	Config            ports.ConfigPort
}

// Options configures NewService's default adapter wiring.
type Options struct {
	AurBaseURL    string
	SyncDBRoot    string
	LocalDBRoot   string
	DevelCacheDir string
	In            io.Reader
	Out           io.Writer
}

// NewService assembles the production Service: one concrete adapter per
// port, the same shape as the teacher's own constructor.
func NewService(opts Options) *Service {
	repo := adapters.NewNativeRepoAdapter(opts.SyncDBRoot)
	return &Service{
		AurMetadata:       adapters.NewAurClientAdapter(opts.AurBaseURL),
		NativeRepo:        repo,
		InstalledSnapshot: adapters.NewInstalledSnapshotAdapter(opts.LocalDBRoot),
		GroupExpansion:    repo,
		Choice:            adapters.NewChoicePromptAdapter(opts.In, opts.Out),
		DevelVersion:      adapters.NewDevelVersionAdapter(opts.DevelCacheDir),
		Config:            adapters.NewConfigFileAdapter(),
	}
}
