package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const helpTemplate = `async-demos - Retry, persistence and batching demos against a placeholder JSON API

USAGE
  async-demos <command> [flags]

COMMANDS
  retry                                  Run a simulated flaky operation under the retry policy
  visits                                 Increment the persisted visit counter
  fetch <users|posts|todos|user ID>      Fetch resources from the placeholder API
  post                                   Create a post on the placeholder API
  batch                                  Fetch several users in concurrent batches
  search                                 Debounced search over post titles, queries read from stdin

FLAGS
  Store:
    --store <memory|file|bolt|nats>      Store backend (default: file)
    --store-path <dir>                   Directory for the file and bolt stores (default: .async-demos)
    --nats-url <url>                     NATS server URL (default: nats://127.0.0.1:4222)
    --nats-bucket <name>                 JetStream key-value bucket (default: async_demos)

  Retry:
    --max-attempts <int>                 Attempts per operation, including the first (default: 3)
    --retry-delay <ms>                   Fixed delay between attempts (default: 1000)

  Batch & API:
    --batch-size <int>                   Items processed concurrently per batch (default: 5)
    --api-url <url>                      Placeholder API base URL (default: https://jsonplaceholder.typicode.com)
    --http-timeout <seconds>             Per-request timeout (default: 10)

  Output:
    -o, --output <json|yaml>             Output format (default: json)
    --metrics-addr <addr>                Serve Prometheus metrics while running
    -v, --verbose                        Enable debug logging
    --config <path>                      Path to additional config file

  Help & Version:
    -h, --help                           Show this help text
    --version                            Show version, commit, build date

CONFIG FILES
  ~/.config/async-demos/config < .async-demos/config < --config < flags
  KEY=VALUE lines; keys: STORE_BACKEND STORE_PATH NATS_URL NATS_BUCKET MAX_ATTEMPTS
  RETRY_DELAY_MS BATCH_SIZE API_BASE_URL HTTP_TIMEOUT OUTPUT_FORMAT METRICS_ADDR VERBOSE

EXIT CODES
  0   Success              Command completed
  1   Error                Invalid arguments, misconfiguration, request failure
  2   RetriesExhausted     Every attempt of a retried operation failed
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Succeed on the 4th of 5 attempts, 100ms apart
  async-demos retry --fail-times 3 --max-attempts 5 --retry-delay 100

  # Count visits in a bolt database
  async-demos visits --store bolt

  # Fetch three users, two at a time, as YAML
  async-demos batch --ids 1,2,3 --batch-size 2 -o yaml
`

// SetCustomHelp shows the full help text for the root command. Subcommands
// keep cobra's generated help.
func SetCustomHelp(root *cobra.Command) {
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd.HasParent() {
			defaultHelp(cmd, args)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), helpTemplate)
	})
}
