package display

import (
	fx "github.com/robotalks/sonar.go/pkg/framework"
)

type multiPanel []Panel

// Panels mirrors frames to all panels, nil entries are skipped.
func Panels(panels ...Panel) Panel {
	var m multiPanel
	for _, p := range panels {
		if p != nil {
			m = append(m, p)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multiPanel) Init() error {
	var errs fx.AggregatedError
	for _, p := range m {
		errs.Add(p.Init())
	}
	return errs.Aggregate()
}

func (m multiPanel) Flush(pix []byte) error {
	var errs fx.AggregatedError
	for _, p := range m {
		errs.Add(p.Flush(pix))
	}
	return errs.Aggregate()
}
