// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package intent turns free text plus a language into a structured filter
// set. A category flag fires on keyword membership in the text OR a
// non-empty extracted entity list for that category.
package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/metrics"
	"github.com/cinegraph/cinegraph/internal/models"
)

// RoleLookup resolves whether a person is primarily an actor or a
// director, typically against a remote knowledge base. Implementations
// return ok=false when the person is unknown or the service is
// unreachable.
type RoleLookup interface {
	Role(ctx context.Context, person, lang string) (role models.IntentKind, ok bool)
}

// Extractor derives Intent values from free text.
type Extractor struct {
	entities EntityExtractor
	roles    RoleLookup // nil when no lookup service is configured
	logger   zerolog.Logger
}

// New builds an Extractor. roles may be nil; role resolution then relies
// on the keyword heuristic alone.
func New(entities EntityExtractor, roles RoleLookup) *Extractor {
	return &Extractor{
		entities: entities,
		roles:    roles,
		logger:   logging.WithComponent("intent"),
	}
}

// Extract derives the intent for one text+language pair.
func (e *Extractor) Extract(ctx context.Context, text, lang string) models.Intent {
	lower := strings.ToLower(text)
	ents := e.entities.ExtractAll(ctx, text, lang)

	hasActorKw := containsAny(lower, keywordsFor(actorKeywords, lang))
	hasDirectorKw := containsAny(lower, keywordsFor(directorKeywords, lang))

	intent := models.Intent{
		Flags:   make(map[models.IntentKind]bool),
		Persons: ents.Persons,
		Years:   ents.Years,
		Genres:  ents.Genres,
		Studios: ents.Orgs,
	}

	intent.Flags[models.IntentGenre] = containsAny(lower, keywordsFor(genreKeywords, lang)) || len(ents.Genres) > 0
	intent.Flags[models.IntentYear] = containsAny(lower, keywordsFor(yearKeywords, lang)) || len(ents.Years) > 0
	intent.Flags[models.IntentStudio] = containsAny(lower, keywordsFor(studioKeywords, lang)) || len(ents.Orgs) > 0

	e.assignRoles(ctx, &intent, lang, hasActorKw, hasDirectorKw)

	intent.Flags[models.IntentActor] = hasActorKw || len(intent.Roles.Actors) > 0
	intent.Flags[models.IntentDirector] = hasDirectorKw || len(intent.Roles.Directors) > 0

	outcome := "understood"
	if !intent.Any() {
		outcome = "not_understood"
	}
	metrics.IntentExtractions.WithLabelValues(lang, outcome).Inc()

	return intent
}

// assignRoles distributes extracted persons between the actor and
// director roles. The lookup service decides when reachable; otherwise
// the keyword heuristic applies. When both keyword sets fire and no
// lookup is available, persons stay unassigned and are surfaced as
// ambiguous rather than force-assigned a role.
func (e *Extractor) assignRoles(ctx context.Context, intent *models.Intent, lang string, hasActorKw, hasDirectorKw bool) {
	for _, person := range intent.Persons {
		if e.roles != nil {
			if role, ok := e.roles.Role(ctx, person, lang); ok {
				switch role {
				case models.IntentDirector:
					intent.Roles.Directors = append(intent.Roles.Directors, person)
				default:
					intent.Roles.Actors = append(intent.Roles.Actors, person)
				}
				continue
			}
		}

		switch {
		case hasActorKw && !hasDirectorKw:
			intent.Roles.Actors = append(intent.Roles.Actors, person)
		case hasDirectorKw && !hasActorKw:
			intent.Roles.Directors = append(intent.Roles.Directors, person)
		case hasActorKw && hasDirectorKw:
			intent.Ambiguous = append(intent.Ambiguous, person)
		default:
			// No role signal at all: default to actor, the more common
			// search in practice.
			intent.Roles.Actors = append(intent.Roles.Actors, person)
		}
	}

	if len(intent.Ambiguous) > 0 {
		e.logger.Debug().Strs("persons", intent.Ambiguous).
			Msg("person roles ambiguous, surfacing to caller")
	}
}

// ToFilterSet converts an intent into the query builder's input. Only the
// first value of each category populates the filter; the full lists stay
// on the Intent for diagnostics.
func ToFilterSet(intent models.Intent, lang string) models.QueryFilterSet {
	f := models.QueryFilterSet{Language: lang}
	if len(intent.Roles.Actors) > 0 {
		f.Actor = intent.Roles.Actors[0]
	}
	if len(intent.Roles.Directors) > 0 {
		f.Director = intent.Roles.Directors[0]
	}
	if len(intent.Years) > 0 {
		f.Year = intent.Years[0]
	}
	if len(intent.Genres) > 0 {
		f.Genre = intent.Genres[0]
	}
	if len(intent.Studios) > 0 {
		f.Studio = intent.Studios[0]
	}
	return f
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
