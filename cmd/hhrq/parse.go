package main

import (
	"sync"

	"github.com/Jeffail/tunny"
	"go.uber.org/zap"

	"github.com/TuftsBCB/searchio/hhr"
	"github.com/TuftsBCB/searchio/logger"
	"github.com/TuftsBCB/searchio/searchio"
)

// report is every query result in one file.
type report struct {
	file    string
	results []*hhr.QueryResult
	err     error
}

// parseAll reads the files given with a pool of a.cfg.Workers parsers. The
// reports are returned in the order of files. The first error (in that
// order) is returned, after every file has been read.
func (a *app) parseAll(files []string) ([]report, error) {
	opts := a.options()
	pool := tunny.NewFunc(a.cfg.Workers, func(payload interface{}) interface{} {
		file := payload.(string)
		results, err := searchio.ReadAll(file, a.cfg.Format, opts...)
		return report{file: file, results: results, err: err}
	})
	defer pool.Close()

	reports := make([]report, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			reports[i] = pool.Process(file).(report)
		}(i, file)
	}
	wg.Wait()

	for _, r := range reports {
		if r.err != nil {
			return nil, r.err
		}
		logger.Info("Read report",
			zap.String("file", r.file),
			zap.Int("queries", len(r.results)))
	}
	return reports, nil
}
