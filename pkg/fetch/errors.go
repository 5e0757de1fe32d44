package fetch

import "fmt"

// Download failure reasons.
const (
	ReasonCouldNotDownload = "couldn't download"
	ReasonFailedCheck      = "failed check"
)

// DownloadError is a roll that could not be retrieved or failed the
// truncation check. It is recorded on the run outcome and never aborts a run.
type DownloadError struct {
	URL           string
	Destination   string
	Reason        string
	ContentLength int
	Err           error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Reason, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Reason, e.URL)
}

func (e *DownloadError) Unwrap() error { return e.Err }
