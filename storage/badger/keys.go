package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/coldmail/core"
)

// Key prefixes for different data types
const (
	draftPrefix        = "drarec"
	draftDatePrefix    = "drarecd"
	draftCompanyPrefix = "drarecc"
	draftIDSeq         = "drarecseq"
	vectorPrefix       = "embvec"
)

// makeDraftKey generates a key for a draft by ID.
func makeDraftKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", draftPrefix, id))
}

// makeDraftDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeDraftDateKey(timestamp time.Time, id core.ID) []byte {
	buf := make([]byte, len(draftDatePrefix)+1+16)
	offset := copy(buf, draftDatePrefix+":")
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDraftDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDraftDateKey(timestamp time.Time) []byte {
	buf := make([]byte, len(draftDatePrefix)+1+8)
	offset := copy(buf, draftDatePrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// companyID folds a company name to its index identifier.
func companyID(company string) core.ID {
	return core.IDFromContent(strings.ToLower(strings.TrimSpace(company)))
}

// makeDraftCompanyKey generates a composite key for the company index.
// Format: prefix:companyID:timestamp:id
func makeDraftCompanyKey(company string, timestamp time.Time, id core.ID) []byte {
	buf := make([]byte, len(draftCompanyPrefix)+1+24)
	offset := copy(buf, draftCompanyPrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(companyID(company)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDraftCompanyKey generates the prefix of every index key for company.
// Format: prefix:companyID
func makePartialDraftCompanyKey(company string) []byte {
	buf := make([]byte, len(draftCompanyPrefix)+1+8)
	offset := copy(buf, draftCompanyPrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(companyID(company)))
	return buf
}

// makeVectorKey generates a key for a cached embedding.
func makeVectorKey(key core.ID) []byte {
	buf := make([]byte, len(vectorPrefix)+1+8)
	offset := copy(buf, vectorPrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(key))
	return buf
}
