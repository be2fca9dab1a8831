package nginx

import (
	"bytes"
	"fmt"
	"github.com/abalx/nginx-log-analyzer/stat"
	"hash"
	"hash/fnv"
	"math"
	"strconv"
	"unsafe"
)

/*
A component used to parse one line of an nginx access log into a stat record.
This parser should work reasonably fast due to the extensive use of `bytes.IndexByte` method,
that is accelerated using vectorized instructions.
Under load in hot path this parser should work with almost zero allocations.

The extraction is deliberately tolerant: it does not count delimiters and
ignores everything except the two fields the report needs. The request
target is the first whitespace-separated field starting with `/`, the
duration is the trailing field parsed as a non-negative float. Any line
missing either of those yields an error, never a panic.

Responsibilities:
	- parse logline to req record
	- copy required parts of line bytes to separate storage or structure,
	so line bytes can be recycled and reused afterward

Attention:
	- url strings are cached in `urlInternCache` to avoid allocations,
	but we enforce certain cache size as protection from memory leaks,
	since urls with query strings can have high cardinality
*/
type LineToRecordParser struct {
	urlInternCacheSize int
	stringInternHash   hash.Hash32
	urlInternCache     map[uint32]string
}

func NewLineToRecordParser(urlInternCacheSize uint) (*LineToRecordParser, error) {
	result := &LineToRecordParser{
		urlInternCacheSize: int(urlInternCacheSize),
		stringInternHash:   fnv.New32a(),
		urlInternCache:     make(map[uint32]string),
	}
	return result, nil
}

func (p *LineToRecordParser) Parse(line []byte) (stat.Record, error) {
	url, urlErr := p.findAndParseURLPart(line)
	if urlErr != nil {
		return stat.Record{}, fmt.Errorf("can't parse url: %v", urlErr)
	}
	requestTime, timeErr := p.findAndParseRequestTimePart(line)
	if timeErr != nil {
		return stat.Record{}, fmt.Errorf("can't parse request time: %v", timeErr)
	}
	return stat.Record{URL: url, RequestTime: requestTime}, nil
}

func (p *LineToRecordParser) findAndParseURLPart(line []byte) (string, error) {
	rest := line
	for {
		for len(rest) > 0 && rest[0] == ' ' {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return "", fmt.Errorf("unexpected format of line. no request target field")
		}
		fieldEnd := bytes.IndexByte(rest, ' ')
		var field []byte
		if fieldEnd == -1 {
			field = rest
			rest = nil
		} else {
			field = rest[:fieldEnd]
			rest = rest[fieldEnd+1:]
		}
		if field[0] == '/' {
			return p.internURLString(field), nil
		}
	}
}

func (p *LineToRecordParser) findAndParseRequestTimePart(line []byte) (float64, error) {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t' || line[end-1] == '\r') {
		end--
	}
	if end == 0 {
		return 0, fmt.Errorf("unexpected format of line. line is blank")
	}
	timePartStart := bytes.LastIndexByte(line[:end], ' ') + 1
	timePart := line[timePartStart:end]
	if bytes.IndexByte(timePart, '.') == -1 {
		// a trailing integer is some other field, request time is always decimal
		return 0, fmt.Errorf("unexpected format of line. no decimal request time field")
	}

	timePartStr := *(*string)(unsafe.Pointer(&timePart)) // bytes to string without potential allocation
	requestTime, parseErr := strconv.ParseFloat(timePartStr, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("can't parse float from `%s`: %v", timePartStr, parseErr)
	}
	if requestTime < 0 || math.IsNaN(requestTime) || math.IsInf(requestTime, 0) {
		return 0, fmt.Errorf("request time `%s` is not a non-negative finite number", timePartStr)
	}
	return requestTime, nil
}

func (p *LineToRecordParser) internURLString(urlPart []byte) string {
	if p.urlInternCacheSize == 0 {
		return string(urlPart)
	}
	if len(p.urlInternCache) > p.urlInternCacheSize {
		p.urlInternCache = make(map[uint32]string)
	}

	urlPartStr := *(*string)(unsafe.Pointer(&urlPart)) // bytes to string without potential allocation
	p.stringInternHash.Reset()
	_, _ = p.stringInternHash.Write(urlPart)
	urlHash := p.stringInternHash.Sum32()
	partFromCache, ok := p.urlInternCache[urlHash]
	if ok && urlPartStr == partFromCache {
		return partFromCache
	}
	urlString := string(urlPart)
	p.urlInternCache[urlHash] = urlString
	return urlString
}
