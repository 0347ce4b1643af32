package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/errors"

	"main/internal/book"
	"main/internal/bus"
	"main/internal/csvio"
	"main/internal/engine"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/sink"
	"main/pkg/conn"
)

func main() {
	if err := run(); err != nil {
		obs.Errorf("engine failed: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	logLevel := flag.String("log-level", "info", "log verbosity: debug|info|warn|error")
	logFile := flag.String("log-file", "", "mirror log lines into this file")
	configPath := flag.String("config", "", "path to JSON tuning config")
	pgDSN := flag.String("pg-dsn", "", "Postgres DSN for the record archive sink (overrides config)")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address for continuous profiling")
	dumpBooks := flag.Bool("dump-books", false, "log resting book snapshots after the run")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] input.csv output.csv\n", os.Args[0])
		flag.PrintDefaults()
		return errors.New("expected input and output file paths")
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	level, err := obs.ParseLogLevel(*logLevel)
	if err != nil {
		return err
	}
	obs.SetLogLevel(level)
	if *logFile != "" {
		if err := obs.SetLogFile(*logFile); err != nil {
			return err
		}
		defer func() { _ = obs.CloseLogFile() }()
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *pgDSN != "" {
		loaded.PostgresDSN = *pgDSN
	}
	if *dumpBooks {
		loaded.DumpBooks = true
	}

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "matching-engine",
			ServerAddress:   *pyroscopeAddr,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return errors.Wrap(err, "start pyroscope")
		}
		defer func() { _ = profiler.Stop() }()
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	metrics := obs.NewMetrics()
	outputQueue := bus.NewQueue[string](loaded.OutputQueueCapacity)

	queueSink := sink.NewQueueSink(outputQueue)
	var recordSink book.RecordSink = queueSink

	var archive *sink.PostgresSink
	if loaded.PostgresDSN != "" {
		client, err := conn.New(conn.Option{ConnString: loaded.PostgresDSN})
		if err != nil {
			return errors.Wrap(err, "connect postgres")
		}
		archive, err = sink.NewPostgresSink(client, queueSink)
		if err != nil {
			_ = client.Close()
			return err
		}
		recordSink = archive
	}

	coord := engine.New(engine.Config{
		InputQueueCapacity: loaded.InputQueueCapacity,
		BookInboxCapacity:  loaded.BookInboxCapacity,
	}, recordSink, metrics)

	reader := csvio.NewReader(in, coord.Input(), metrics)
	writer := csvio.NewWriter(out, outputQueue, metrics)

	var wg sync.WaitGroup
	readerErr := make(chan error, 1)
	writerErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		readerErr <- reader.Run()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		writerErr <- writer.Run()
	}()

	// Run returns only after every book worker joined, so closing the output
	// queue here cannot drop trailing records.
	coord.Run()
	outputQueue.Close()
	wg.Wait()

	if err := <-readerErr; err != nil {
		return err
	}
	if err := <-writerErr; err != nil {
		return err
	}

	if archive != nil {
		if err := archive.Close(); err != nil {
			obs.Errorf("close record archive: %v", err)
		}
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}

	if loaded.DumpBooks {
		coord.DumpBooks()
	}

	snap := metrics.Snapshot()
	obs.Infof("run complete: rows=%d skipped=%d events=%d matches=%d rejects=%d records=%d input_hwm=%d",
		snap.RowsParsed, snap.RowsSkipped, snap.Events, snap.Matches, snap.Rejects, snap.Records,
		snap.InputDepthHighWater)
	obs.Debugf("phase latency: read=%+v dispatch=%+v write=%+v",
		snap.ReadLatency, snap.DispatchLatency, snap.WriteLatency)
	return nil
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
