package app

import (
	"storytime/internal/images"
	"storytime/internal/llm"
	"storytime/internal/storage"
	"storytime/internal/store"
	"storytime/internal/tts"
	"storytime/internal/video"
	"storytime/pkg/config"
	"storytime/pkg/prompts"
)

type Service struct {
	cfg       *config.Config
	prompts   *prompts.Prompts
	llm       llm.Client
	tts       tts.Provider
	images    *images.Client
	assembler *video.Assembler
	store     *store.Store
	library   *storage.LocalStorage
	exporter  storage.Exporter
}

type ServiceOptions struct {
	Config    *config.Config
	Prompts   *prompts.Prompts
	LLM       llm.Client
	TTS       tts.Provider
	Images    *images.Client
	Assembler *video.Assembler
	Store     *store.Store
	Library   *storage.LocalStorage
	Exporter  storage.Exporter
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:       opts.Config,
		prompts:   opts.Prompts,
		llm:       opts.LLM,
		tts:       opts.TTS,
		images:    opts.Images,
		assembler: opts.Assembler,
		store:     opts.Store,
		library:   opts.Library,
		exporter:  opts.Exporter,
	}
}

func (s *Service) Config() *config.Config         { return s.cfg }
func (s *Service) Prompts() *prompts.Prompts      { return s.prompts }
func (s *Service) LLM() llm.Client                { return s.llm }
func (s *Service) TTS() tts.Provider              { return s.tts }
func (s *Service) Images() *images.Client         { return s.images }
func (s *Service) Assembler() *video.Assembler    { return s.assembler }
func (s *Service) Store() *store.Store            { return s.store }
func (s *Service) Library() *storage.LocalStorage { return s.library }
func (s *Service) Exporter() storage.Exporter     { return s.exporter }
