package bot

// replies
const (
	reportFileCaptionTemplate  = "%s report, %s - %s, rows: %d"
	emptyReportCaptionTemplate = "%s report, %s - %s: no data for the range"
	reportGenerationFailedMsg  = "Report generation failed: %s"
)

const captionDateLayout = "2006-01-02 15:04"
