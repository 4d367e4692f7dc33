package router

import (
	"slices"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

const contentTypeAmzJSON10 = "application/x-amz-json-1.0"

// conflict resolves a group of services whose definitions overlap so much
// that no wire signal tells them apart (ex: DescribeEndpoints exists in both
// timestream-query and timestream-write).
type conflict struct {
	// names is the exact, sorted set of candidate service names.
	names   []string
	resolve func(req Request) domain.ServiceIdentifier
}

func winner(name string) func(Request) domain.ServiceIdentifier {
	return func(Request) domain.ServiceIdentifier { return domain.ID(name) }
}

var conflicts = []conflict{
	{names: []string{"timestream-query", "timestream-write"}, resolve: winner("timestream-query")},
	{names: []string{"docdb", "neptune", "rds"}, resolve: winner("rds")},
	{
		// sqs ships a json and a query definition sharing one implementation.
		// JSON clients always send the amz-json 1.0 content type.
		names: []string{"sqs"},
		resolve: func(req Request) domain.ServiceIdentifier {
			if req.Header(headerContentType) == contentTypeAmzJSON10 {
				return domain.ID("sqs")
			}
			return domain.ID("sqs", domain.ProtocolQuery)
		},
	},
}

// resolveConflict looks up the candidate name set in the conflict table.
func resolveConflict(candidates candidateSet, req Request) (domain.ServiceIdentifier, bool) {
	if len(candidates) == 0 {
		return domain.ServiceIdentifier{}, false
	}
	names := candidates.names()
	for _, c := range conflicts {
		if slices.Equal(c.names, names) {
			return c.resolve(req), true
		}
	}
	return domain.ServiceIdentifier{}, false
}
