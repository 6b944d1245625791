package runner

type Options struct {
	// Dry run logs every write instead of sending it to GitHub
	DryRun bool

	// Delivery id of the webhook (or generated for CLI runs), used in logs
	DeliveryID string

	// Path to a custom deploy preview template; empty uses the embedded one
	PreviewTemplate string
}
