// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package store

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/knakk/rdf"
	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/metrics"
	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

// Local ontology vocabulary. The ontology file ships with Spanish-named
// predicates under its authoring namespace; the names here are data, not
// API surface.
const localNS = "http://www.semanticweb.org/anghely/ontologies/2025/8/OntologiaPeliculas#"

const rdfTypeIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

var (
	localClassMovie   = localNS + "Pelicula"
	localPredTitle    = localNS + "nombrePelicula"
	localPredSynopsis = localNS + "sinopsisPelicula"
	localPredDuration = localNS + "duracionPelicula"
	localPredReleased = localNS + "fechaEstreno"
	localPredDirector = localNS + "dirigidaPor"
	localPredActor    = localNS + "tieneActor"
	localPredGenre    = localNS + "tieneGenero"
	localPredStudio   = localNS + "estaAfiliadoA"
	localPredPerson   = localNS + "nombrePersona"
	localPredGenreLbl = localNS + "nombreGenero"
	localPredOrgLbl   = localNS + "nombreOrganizacion"
)

// LocalStore is the in-memory ontology. The graph is indexed by subject and
// by predicate once at load time and is immutable afterward, so queries
// need no locking.
type LocalStore struct {
	// objects indexes subject -> predicate -> object values.
	objects map[string]map[string][]string

	// byPredicate indexes predicate -> (subject, object) statements.
	byPredicate map[string][]statement

	// movies lists the subjects typed as movies, in load order.
	movies []string

	tripleCount int
	logger      zerolog.Logger
}

type statement struct {
	subject string
	object  string
}

// loadFormats is the ordered candidate list tried when parsing the
// ontology file. A content sniff reorders it so the likeliest format is
// tried first; total failure yields an empty, still-queryable store.
var loadFormats = []rdf.Format{rdf.RDFXML, rdf.Turtle, rdf.NTriples}

// NewLocalStore loads the ontology at path. Load failures are logged and
// produce an empty store, never an error: an unreadable ontology is a
// valid zero-result source.
func NewLocalStore(path string) *LocalStore {
	s := &LocalStore{
		objects:     make(map[string]map[string][]string),
		byPredicate: make(map[string][]statement),
		logger:      logging.WithComponent("store.local"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).
			Msg("ontology file unreadable, starting with empty store")
		metrics.OntologyTriples.Set(0)
		return s
	}

	triples := decodeOrdered(data, s.logger)
	for _, t := range triples {
		s.add(t)
	}
	s.buildMovieList()
	s.tripleCount = len(triples)
	metrics.OntologyTriples.Set(float64(s.tripleCount))

	s.logger.Info().Int("triples", s.tripleCount).Int("movies", len(s.movies)).
		Str("path", path).Msg("ontology loaded")
	return s
}

// decodeOrdered tries each candidate format in sniffed order and returns
// the first successful parse, or nil when every format fails.
func decodeOrdered(data []byte, logger zerolog.Logger) []rdf.Triple {
	for _, format := range sniffOrder(data) {
		dec := rdf.NewTripleDecoder(bytes.NewReader(data), format)
		triples, err := dec.DecodeAll()
		if err == nil && len(triples) > 0 {
			return triples
		}
		logger.Debug().Err(err).Msgf("parse attempt failed for format %v", format)
	}
	logger.Warn().Msg("all ontology formats failed, starting with empty store")
	return nil
}

// sniffOrder reorders the candidate formats so the one matching the file's
// leading bytes is tried first.
func sniffOrder(data []byte) []rdf.Format {
	head := strings.TrimSpace(string(data[:min(len(data), 256)]))
	var first rdf.Format
	switch {
	case strings.HasPrefix(head, "<?xml"), strings.HasPrefix(head, "<rdf:RDF"):
		first = rdf.RDFXML
	case strings.HasPrefix(head, "@prefix"), strings.HasPrefix(head, "@base"):
		first = rdf.Turtle
	default:
		return loadFormats
	}
	ordered := []rdf.Format{first}
	for _, f := range loadFormats {
		if f != first {
			ordered = append(ordered, f)
		}
	}
	return ordered
}

func (s *LocalStore) add(t rdf.Triple) {
	subj := t.Subj.String()
	pred := t.Pred.String()
	obj := t.Obj.String()

	preds, ok := s.objects[subj]
	if !ok {
		preds = make(map[string][]string)
		s.objects[subj] = preds
	}
	preds[pred] = append(preds[pred], obj)
	s.byPredicate[pred] = append(s.byPredicate[pred], statement{subject: subj, object: obj})
}

func (s *LocalStore) buildMovieList() {
	for _, st := range s.byPredicate[rdfTypeIRI] {
		if st.object == localClassMovie {
			s.movies = append(s.movies, st.subject)
		}
	}
}

// Movies evaluates the query plan over the indexed graph. The rendered
// SPARQL text is ignored here; Plan carries the same constraints.
func (s *LocalStore) Movies(ctx context.Context, q sparql.Query) []sparql.Binding {
	plan := q.Plan
	rows := make([]sparql.Binding, 0, plan.Limit)
	for _, movie := range s.movies {
		if ctx.Err() != nil {
			break
		}
		if !s.matches(movie, plan) {
			continue
		}
		rows = append(rows, s.bindingFor(movie))
		if len(rows) >= plan.Limit {
			break
		}
	}
	return rows
}

func (s *LocalStore) matches(movie string, plan sparql.Plan) bool {
	if plan.Actor != "" && !s.relatedNameMatches(movie, localPredActor, localPredPerson, plan.Actor) {
		return false
	}
	if plan.Director != "" && !s.relatedNameMatches(movie, localPredDirector, localPredPerson, plan.Director) {
		return false
	}
	if plan.Studio != "" && !s.relatedNameMatches(movie, localPredStudio, localPredOrgLbl, plan.Studio) {
		return false
	}
	if plan.YearPrefix != "" {
		found := false
		for _, date := range s.objectsOf(movie, localPredReleased) {
			if strings.HasPrefix(date, plan.YearPrefix) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if plan.Genre != "" {
		found := false
		for _, name := range s.relatedNames(movie, localPredGenre, localPredGenreLbl) {
			if strings.Contains(strings.ToLower(name), strings.ToLower(plan.Genre)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// relatedNames resolves movie -[rel]-> entity -[nameProp]-> name chains,
// tolerating plain-literal objects on the relation itself.
func (s *LocalStore) relatedNames(movie, rel, nameProp string) []string {
	var names []string
	for _, obj := range s.objectsOf(movie, rel) {
		entityNames := s.objectsOf(obj, nameProp)
		if len(entityNames) == 0 {
			names = append(names, obj)
			continue
		}
		names = append(names, entityNames...)
	}
	return names
}

func (s *LocalStore) relatedNameMatches(movie, rel, nameProp, want string) bool {
	for _, name := range s.relatedNames(movie, rel, nameProp) {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

func (s *LocalStore) objectsOf(subj, pred string) []string {
	if preds, ok := s.objects[subj]; ok {
		return preds[pred]
	}
	return nil
}

// bindingFor flattens one movie subject into the remote binding shape.
// Multi-valued fields join with ", " to match the GROUP_CONCAT output of
// the HTTP stores, so the normalizer sees one row format everywhere.
func (s *LocalStore) bindingFor(movie string) sparql.Binding {
	b := sparql.Binding{"film": movie}
	setFirst := func(key, pred string) {
		if vals := s.objectsOf(movie, pred); len(vals) > 0 {
			b[key] = vals[0]
		}
	}
	setFirst("title", localPredTitle)
	setFirst("synopsis", localPredSynopsis)
	setFirst("runtime", localPredDuration)
	setFirst("releaseDate", localPredReleased)

	setJoined := func(key string, names []string) {
		if len(names) > 0 {
			b[key] = strings.Join(names, ", ")
		}
	}
	setJoined("directors", s.relatedNames(movie, localPredDirector, localPredPerson))
	setJoined("actors", s.relatedNames(movie, localPredActor, localPredPerson))
	setJoined("genres", s.relatedNames(movie, localPredGenre, localPredGenreLbl))
	return b
}

// Healthy reports whether the ontology loaded any data. An empty store
// still answers queries but is reported unhealthy so the health aggregate
// can surface the missing file.
func (s *LocalStore) Healthy(_ context.Context) bool {
	return s.tripleCount > 0
}

func (s *LocalStore) Kind() models.SourceKind { return models.SourceLocal }

// TripleCount returns the number of loaded triples.
func (s *LocalStore) TripleCount() int { return s.tripleCount }

// MovieCount returns the number of typed movie subjects.
func (s *LocalStore) MovieCount() int { return len(s.movies) }
