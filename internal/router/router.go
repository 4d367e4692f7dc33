package router

import (
	"errors"
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

// Stage names the step of the resolution that produced a decision.
type Stage string

const (
	StageSigningName        Stage = "signing-name"
	StageSigningNameRule    Stage = "signing-name-rule"
	StageTargetPrefix       Stage = "target-prefix"
	StageCandidates         Stage = "candidates"
	StagePathRule           Stage = "path-rule"
	StageHostPrefix         Stage = "host-prefix"
	StageHostRule           Stage = "host-rule"
	StageQueryAction        Stage = "query-action"
	StageConflict           Stage = "conflict"
	StageFallback           Stage = "fallback"
	StageSigningNameDefault Stage = "signing-name-default"
	StageArbitraryCandidate Stage = "arbitrary-candidate"
	StageUnknown            Stage = "unknown"
)

// queryProtocols are the protocols addressed with Action/Version parameters.
var queryProtocols = []string{domain.ProtocolEC2, domain.ProtocolQuery}

// Decision is the outcome of one resolution.
type Decision struct {
	// Service is nil when the request could not be classified.
	Service *domain.Service
	Stage   Stage
	// Rule names the custom or fallback rule that matched, if any.
	Rule       string
	Indicators domain.ServiceIndicators
	// Candidates left when the decision was taken, sorted.
	Candidates []domain.ServiceIdentifier
	// BodySkipped is set when the body could not be parsed for form values.
	BodySkipped bool
	// Shallow is set when resolution stopped because the body is unavailable.
	Shallow bool
}

// Known reports whether a service was found.
func (d Decision) Known() bool { return d.Service != nil }

// Router decides which service a request is targeting. It holds no mutable
// state: a Router is safe for concurrent use as long as its catalog is.
type Router struct {
	catalog Catalog
	log     logger.Logger
}

// New creates a router over a catalog. A nil logger disables logging.
func New(c Catalog, log logger.Logger) *Router {
	if log == nil {
		log = logger.Nop()
	}
	return &Router{catalog: c, log: log}
}

// Resolve returns the service the request is targeting, or nil.
func (rt *Router) Resolve(req Request) *domain.Service {
	return rt.Decide(req).Service
}

// ResolveDataPlane only applies the host addressing rules (function URLs,
// website endpoints). Auth headers and the body are never looked at.
func (rt *Router) ResolveDataPlane(req Request) *domain.Service {
	return rt.DecideDataPlane(req).Service
}

// DecideDataPlane is ResolveDataPlane with decision details.
func (rt *Router) DecideDataPlane(req Request) Decision {
	d := Decision{Stage: StageUnknown, Indicators: domain.ServiceIndicators{Host: req.Host(), Path: req.Path()}}
	if rule, ok := matchRules(hostRules, req.Host()); ok {
		if svc, ok := rt.lookup(rule.service); ok {
			d.Service, d.Stage, d.Rule = svc, StageHostRule, rule.name
		}
	}
	return d
}

// Decide runs the resolution stages in their fixed order. Every stage returns
// as soon as it identifies exactly one service; later stages rely on the
// earlier ones having failed.
func (rt *Router) Decide(req Request) Decision {
	si := ExtractIndicators(req)
	if si.SigningName == "" {
		if auth := req.Header(headerAuthorization); auth != "" && !strings.HasPrefix(auth, "AWS ") {
			rt.log.Debug("authorization header could not be parsed for service routing",
				logger.String("authorization", auth))
		}
	}

	d := Decision{Indicators: si}
	candidates := candidateSet{}

	// 1. signing name
	if si.SigningName != "" {
		hits := rt.catalog.BySigningName(si.SigningName)
		if len(hits) == 1 {
			// unique for most services
			if rt.settle(&d, hits[0], StageSigningName, "") {
				return d
			}
		}
		if id, ok := matchSigningNameRule(si.SigningName, si.Path); ok {
			if rt.settle(&d, id, StageSigningNameRule, si.SigningName) {
				return d
			}
		}
		candidates.add(hits...)
	}

	// 2. target prefix
	if si.HasTarget() {
		hits := rt.catalog.ByTargetPrefix(si.TargetPrefix)
		if len(hits) == 1 {
			if rt.settle(&d, hits[0], StageTargetPrefix, "") {
				return d
			}
		}
		candidates.add(hits...)
		candidates = candidates.filter(func(id domain.ServiceIdentifier) bool {
			svc, ok := rt.lookup(id)
			return ok && svc.HasOperation(si.Operation)
		})
	} else {
		// no target header, so it cannot be a target-prefix service
		candidates = candidates.filter(func(id domain.ServiceIdentifier) bool {
			svc, ok := rt.lookup(id)
			return ok && !svc.HasTargetPrefix()
		})
	}
	if id, ok := candidates.only(); ok {
		if rt.settle(&d, id, StageCandidates, "") {
			return d
		}
	}

	// 3. path
	if si.Path != "" && si.Path != "/" {
		if rule, ok := matchRules(pathRules, si.Path); ok {
			if rt.settle(&d, rule.service, StagePathRule, rule.name) {
				return d
			}
		}
	}

	// 4. host
	if si.Host != "" {
		// a virtual-host addressed bucket must not be taken for another service
		if !strings.Contains(si.Host, ".s3.") {
			for _, group := range rt.catalog.EndpointPrefixes() {
				if !strings.HasPrefix(si.Host, group.Prefix+".") {
					continue
				}
				if len(group.Services) == 1 {
					if rt.settle(&d, group.Services[0], StageHostPrefix, group.Prefix) {
						return d
					}
				}
				candidates.add(group.Services...)
			}
		}
		if rule, ok := matchRules(hostRules, si.Host); ok {
			if rt.settle(&d, rule.service, StageHostRule, rule.name) {
				return d
			}
		}
	}

	if req.Shallow() {
		// everything below needs the body
		d.Stage, d.Shallow = StageUnknown, true
		d.Candidates = candidates.sorted()
		return d
	}

	// 5. query / form values
	values, err := req.Values()
	switch {
	case errors.Is(err, ErrEntityTooLarge):
		// binary payloads sent as forms end up here, keep going without them
		d.BodySkipped = true
		rt.log.Debug("skipping form values for service routing", logger.Error(err))
	case err != nil:
		d.BodySkipped = true
		rt.log.Warn("failed to read request values for service routing", logger.Error(err))
	case values.Has("Action"):
		// query and ec2 requests always carry an Action, the Version is less significant
		hits := rt.catalog.ByOperation(values.Get("Action"), queryProtocols...)
		if len(hits) == 1 {
			if rt.settle(&d, hits[0], StageQueryAction, "") {
				return d
			}
		}
		if values.Has("Version") {
			version := values.Get("Version")
			kept := hits[:0:0]
			for _, id := range hits {
				if svc, ok := rt.lookup(id); ok && svc.APIVersion == version {
					kept = append(kept, id)
				}
			}
			hits = kept
		}
		if len(hits) == 1 {
			if rt.settle(&d, hits[0], StageQueryAction, "") {
				return d
			}
		}
		candidates.add(hits...)
	}

	// 6. known conflicts
	if id, ok := resolveConflict(candidates, req); ok {
		d.Candidates = candidates.sorted()
		if rt.settle(&d, id, StageConflict, strings.Join(candidates.names(), ",")) {
			return d
		}
	}

	// 7. legacy fallback rules
	if id, rule, ok := matchFallback(req); ok {
		if rt.settle(&d, id, StageFallback, rule) {
			return d
		}
	}

	// 8. last resorts
	d.Candidates = candidates.sorted()
	if si.SigningName != "" {
		if svc, ok := rt.catalog.Get(si.SigningName, ""); ok {
			d.Service, d.Stage = svc, StageSigningNameDefault
			return d
		}
	}
	if len(d.Candidates) > 0 {
		// lowest identifier wins so repeated requests resolve alike
		rt.log.Debug("ambiguous service candidates, picking the first one",
			logger.Strings("candidates", identifierStrings(d.Candidates)))
		if svc, ok := rt.lookup(d.Candidates[0]); ok {
			d.Service, d.Stage = svc, StageArbitraryCandidate
			return d
		}
	}

	d.Stage = StageUnknown
	return d
}

// settle completes the decision if the identifier exists in the catalog.
// Identifiers the catalog does not know count as no match.
func (rt *Router) settle(d *Decision, id domain.ServiceIdentifier, stage Stage, rule string) bool {
	svc, ok := rt.lookup(id)
	if !ok {
		rt.log.Debug("matched service is not in the catalog",
			logger.String("service", id.String()),
			logger.String("stage", string(stage)))
		return false
	}
	d.Service, d.Stage, d.Rule = svc, stage, rule
	return true
}

func (rt *Router) lookup(id domain.ServiceIdentifier) (*domain.Service, bool) {
	return rt.catalog.Get(id.Name, id.Protocol)
}

func identifierStrings(ids []domain.ServiceIdentifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
