package semantic

import (
	"math"
	"sort"
	"strings"
	"time"
)

// corpus is the in-memory index model shared by both backends. It is the
// single place TF-IDF math happens, so the backends cannot drift apart
// numerically. The owning store serializes access.
type corpus struct {
	// docs maps absolute file path to its document.
	docs map[string]*Document

	// df maps term to the count of chunks containing it at least once.
	df map[string]int

	totalChunks int
	updatedAt   time.Time
}

func newCorpus() *corpus {
	return &corpus{
		docs: make(map[string]*Document),
		df:   make(map[string]int),
	}
}

// changeSet records what one apply pass altered, for backends that persist
// deltas instead of rewriting the whole store.
type changeSet struct {
	// upserts are documents created or replaced, norms already final.
	upserts map[string]*Document

	// removals are paths whose documents were deleted.
	removals []string

	// dfChanged maps each term whose document frequency moved to its new
	// value; zero means the term left the corpus.
	dfChanged map[string]int

	// normUpdates lists untouched documents whose chunk norms were
	// recomputed because shared terms or the corpus size changed.
	normUpdates map[string][]*Chunk
}

func (cs *changeSet) empty() bool {
	return len(cs.upserts) == 0 && len(cs.removals) == 0 &&
		len(cs.dfChanged) == 0 && len(cs.normUpdates) == 0
}

// idf is the smoothed inverse document frequency: always positive, defined
// even when df is zero.
func idf(totalChunks, df int) float64 {
	return math.Log(float64(totalChunks+1)/float64(df+1)) + 1
}

// apply upserts and removes documents, maintains the document-frequency
// table incrementally, and recomputes chunk norms wherever an idf input
// moved. The resulting df and norm values match what a full rebuild over
// the surviving chunks would produce.
func (c *corpus) apply(upserts map[string]*Document, removals []string, now time.Time) *changeSet {
	chunksBefore := c.totalChunks
	dfBefore := make(map[string]int)
	noteTerm := func(term string) {
		if _, seen := dfBefore[term]; !seen {
			dfBefore[term] = c.df[term]
		}
	}

	retract := func(doc *Document) {
		for _, ch := range doc.Chunks {
			for term := range ch.Terms {
				noteTerm(term)
				if c.df[term] <= 1 {
					delete(c.df, term)
				} else {
					c.df[term]--
				}
			}
			c.totalChunks--
		}
	}

	for _, path := range removals {
		if doc, ok := c.docs[path]; ok {
			retract(doc)
			delete(c.docs, path)
		}
	}
	for path, doc := range upserts {
		if old, ok := c.docs[path]; ok {
			retract(old)
		}
		for _, ch := range doc.Chunks {
			for term := range ch.Terms {
				noteTerm(term)
				c.df[term]++
			}
			c.totalChunks++
		}
		c.docs[path] = doc
	}

	dfChanged := make(map[string]int)
	for term, before := range dfBefore {
		if after := c.df[term]; after != before {
			dfChanged[term] = after
		}
	}

	normUpdates := c.recomputeNorms(upserts, dfChanged, c.totalChunks != chunksBefore)
	c.updatedAt = now

	return &changeSet{
		upserts:     upserts,
		removals:    removals,
		dfChanged:   dfChanged,
		normUpdates: normUpdates,
	}
}

// recomputeNorms refreshes chunk norms. A changed corpus size shifts every
// idf value, forcing a full pass; otherwise only chunks touching changed
// terms need updating. Upserted documents always get fresh norms.
func (c *corpus) recomputeNorms(upserts map[string]*Document, dfChanged map[string]int, sizeChanged bool) map[string][]*Chunk {
	normUpdates := make(map[string][]*Chunk)
	for path, doc := range c.docs {
		_, upserted := upserts[path]
		var touched []*Chunk
		for _, ch := range doc.Chunks {
			if !upserted && !sizeChanged && !touchesTerms(ch, dfChanged) {
				continue
			}
			ch.Norm = c.chunkNorm(ch)
			touched = append(touched, ch)
		}
		if !upserted && len(touched) > 0 {
			normUpdates[path] = touched
		}
	}
	return normUpdates
}

func touchesTerms(ch *Chunk, terms map[string]int) bool {
	for term := range terms {
		if _, ok := ch.Terms[term]; ok {
			return true
		}
	}
	return false
}

// chunkNorm is the Euclidean norm of a chunk's TF-IDF weight vector.
func (c *corpus) chunkNorm(ch *Chunk) float64 {
	var sum float64
	for term, tf := range ch.Terms {
		w := float64(tf) * idf(c.totalChunks, c.df[term])
		sum += w * w
	}
	return math.Sqrt(sum)
}

// pathsUnder returns the indexed file paths inside scope.
func (c *corpus) pathsUnder(scope string) []string {
	var paths []string
	for path := range c.docs {
		if inScope(path, scope) {
			paths = append(paths, path)
		}
	}
	return paths
}

func inScope(path, scope string) bool {
	if scope == "" {
		return true
	}
	return path == scope || strings.HasPrefix(path, scope+"/")
}

// search scores in-scope chunks against the query term counts by cosine
// similarity. Chunks sharing no term with the query are never returned, so
// only chunks containing at least one query term are scored.
func (c *corpus) search(queryCounts map[string]int, scope string, maxResults int, minScore float64) []Hit {
	if len(queryCounts) == 0 || c.totalChunks == 0 {
		return nil
	}

	weights := make(map[string]float64, len(queryCounts))
	var qnormSq float64
	for term, tf := range queryCounts {
		w := float64(tf) * idf(c.totalChunks, c.df[term])
		weights[term] = w
		qnormSq += w * w
	}
	if qnormSq == 0 {
		return nil
	}
	qnorm := math.Sqrt(qnormSq)

	var hits []Hit
	for path, doc := range c.docs {
		if !inScope(path, scope) {
			continue
		}
		for _, ch := range doc.Chunks {
			if ch.Norm == 0 {
				continue
			}
			var dot float64
			for term, qw := range weights {
				if tf, ok := ch.Terms[term]; ok {
					dot += qw * float64(tf) * idf(c.totalChunks, c.df[term])
				}
			}
			if dot == 0 {
				continue
			}
			score := dot / (qnorm * ch.Norm)
			if score > 1 {
				score = 1
			}
			if score < minScore {
				continue
			}
			hits = append(hits, Hit{
				File:      path,
				StartLine: ch.StartLine,
				EndLine:   ch.EndLine,
				Preview:   ch.Preview,
				Score:     score,
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].File != hits[j].File {
			return hits[i].File < hits[j].File
		}
		return hits[i].StartLine < hits[j].StartLine
	})
	if maxResults > 0 && len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits
}
