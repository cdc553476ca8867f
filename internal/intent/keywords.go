// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package intent

// Per-language keyword sets, one per intent category. Matching is
// lowercase substring over the query text. Unknown languages use the
// English sets.

var actorKeywords = map[string][]string{
	"en": {"actor", "actress", "starring", "stars", "acted in", "plays"},
	"es": {"actor", "actriz", "actuó", "actuo", "actúa", "actua", "protagonizada"},
	"fr": {"acteur", "actrice", "joue", "joué", "avec"},
	"de": {"schauspieler", "schauspielerin", "spielt", "gespielt"},
}

var directorKeywords = map[string][]string{
	"en": {"director", "directed", "directed by", "filmmaker"},
	"es": {"director", "directora", "dirigió", "dirigio", "dirigida por", "dirigidas por"},
	"fr": {"réalisateur", "réalisatrice", "réalisé", "realise", "dirigé"},
	"de": {"regisseur", "regisseurin", "regie", "gedreht von"},
}

var genreKeywords = map[string][]string{
	"en": {"genre", "movies of", "films of", "kind of movies", "type of movies"},
	"es": {"género", "genero", "películas de", "peliculas de", "tipo de películas"},
	"fr": {"genre", "films de", "films d'"},
	"de": {"genre", "filme von", "art von filmen"},
}

var yearKeywords = map[string][]string{
	"en": {"year", "released in", "from the year", "movies of", "of the"},
	"es": {"año", "ano", "estrenada en", "estrenadas en", "películas del", "peliculas del", "estreno", "de los"},
	"fr": {"année", "annee", "sorti en", "sortie en", "de l'année"},
	"de": {"jahr", "erschienen", "aus dem jahr"},
}

var studioKeywords = map[string][]string{
	"en": {"studio", "produced by", "production company", "distributor"},
	"es": {"estudio", "productora", "producida por", "distribuidora"},
	"fr": {"studio", "produit par", "société de production"},
	"de": {"studio", "produziert von", "produktionsfirma"},
}

// genreVocabulary is the per-language fallback genre dictionary used by
// the bundled extractor when no GENRE entity is recognized.
var genreVocabulary = map[string][]string{
	"en": {
		"action", "comedy", "drama", "horror", "thriller", "romance",
		"science fiction", "sci-fi", "fantasy", "animation", "documentary",
		"crime", "mystery", "adventure", "family",
	},
	"es": {
		"acción", "comedia", "drama", "terror", "thriller", "romance",
		"ciencia ficción", "fantasía", "animación", "documental",
		"crimen", "misterio", "aventura", "familiar",
	},
	"fr": {
		"action", "comédie", "drame", "horreur", "thriller", "romance",
		"science-fiction", "fantastique", "animation", "documentaire",
		"crime", "mystère", "aventure", "familial",
	},
	"de": {
		"action", "komödie", "drama", "horror", "thriller", "romantik",
		"science-fiction", "fantasy", "animation", "dokumentation",
		"krimi", "mysterium", "abenteuer", "familie",
	},
}

// studioVocabulary lists well-known production companies recognized
// without NER support.
var studioVocabulary = []string{
	"Disney", "Walt Disney", "Warner Bros", "Universal", "Paramount",
	"Netflix", "Amazon", "Pixar", "Marvel", "Lucasfilm",
	"20th Century Fox", "Sony Pictures",
}

func keywordsFor(table map[string][]string, lang string) []string {
	if kws, ok := table[lang]; ok {
		return kws
	}
	return table["en"]
}

func genresFor(lang string) []string {
	if g, ok := genreVocabulary[lang]; ok {
		return g
	}
	return genreVocabulary["en"]
}
