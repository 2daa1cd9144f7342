package utils

import (
	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescDownloading = "Downloading"
)

// NewBytesProgressBar creates a consistently styled byte-count progress bar.
// A negative total renders a spinner.
func NewBytesProgressBar(total int64, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	return progressbar.NewOptions64(total, opts...)
}

// ProgressReporter adapts a progress bar to a domain.ProgressFunc. The bar is
// created lazily once the total size is known.
func ProgressReporter(description string, onCreate func(*progressbar.ProgressBar)) domain.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(read, total int64) {
		if bar == nil {
			bar = NewBytesProgressBar(total, description)
			if onCreate != nil {
				onCreate(bar)
			}
		}
		_ = bar.Set64(read)
	}
}
