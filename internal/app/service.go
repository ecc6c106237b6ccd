package app

import (
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/adapters"
	"rewin/internal/ports"
)

// ServiceConfig carries the settings the adapters need.
type ServiceConfig struct {
	Shell            string
	RestoreScript    string
	ResolverScript   string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

type Service struct {
	ScanLoader    ports.ScanLoaderPort
	SelectionFile ports.SelectionFilePort
	PackageWriter ports.PackageWriterPort
	PackageReader ports.PackageReaderPort
	AuxCopy       ports.AuxCopyPort
	ScriptWriter  ports.ScriptWriterPort
	ScriptLocator ports.ScriptLocatorPort
	Runner        ports.ProcessRunnerPort
	Commands      ports.ScriptCommandPort
	ConfigRestore ports.ConfigRestorePort
	Resolver      ports.ResolverPort
	Fetcher       ports.FetcherPort
	Drives        ports.DrivePort
	OpenLog       func(path string) ports.LogSinkPort
	Tasks         *TaskStore
	Clock         func() time.Time
}

func NewService(cfg ServiceConfig) Service {
	packages := adapters.NewPackageFileAdapter()
	scripts := adapters.NewScriptFileAdapter()
	shell := adapters.NewPowerShellAdapter(cfg.Shell)
	return Service{
		ScanLoader:    adapters.NewScanDirAdapter(),
		SelectionFile: adapters.NewSelectionFileAdapter(),
		PackageWriter: packages,
		PackageReader: packages,
		AuxCopy:       adapters.NewAuxCopyAdapter(),
		ScriptWriter:  scripts,
		ScriptLocator: scripts,
		Runner:        adapters.NewExecRunnerAdapter(),
		Commands:      shell,
		ConfigRestore: adapters.NewConfigRestoreAdapter(cfg.RestoreScript, shell),
		Resolver:      adapters.NewResolverScriptAdapter(cfg.ResolverScript, shell),
		Fetcher:       adapters.NewHTTPFetcherAdapter(cfg.HTTPTimeoutSec, cfg.HTTPRetries, cfg.HTTPRetryDelayMs),
		Drives:        adapters.NewDriveAdapter(),
		OpenLog: func(path string) ports.LogSinkPort {
			return adapters.NewLogFileAdapter(path)
		},
		Tasks: NewTaskStore(),
		Clock: time.Now,
	}
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// multiSink fans one line out to every sink.
type multiSink []ports.LogSinkPort

func (m multiSink) Append(line string) {
	for _, sink := range m {
		if sink != nil {
			sink.Append(line)
		}
	}
}

func (s Service) operationLog(path string, task *Task) ports.LogSinkPort {
	sinks := multiSink{task}
	if s.OpenLog != nil {
		sinks = append(sinks, s.OpenLog(path))
	}
	return sinks
}

// Task returns a started task by id.
func (s Service) Task(id string) (*Task, error) {
	task := s.Tasks.Get(id)
	if task == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("task not found: " + id)
	}
	return task, nil
}

// CancelTask stops a running task. Canceling a finished task is a no-op.
func (s Service) CancelTask(id string) (*Task, error) {
	task, err := s.Task(id)
	if err != nil {
		return nil, err
	}
	task.Cancel()
	return task, nil
}
