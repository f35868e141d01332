package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPath is the monitor API base path.
const DefaultPath = "/api/v1"

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records for info.
func EncodeTXT(info *Info) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyVersion: TXTVersion,
		TXTKeyState:   info.State,
	}
	path := info.Path
	if path == "" {
		path = DefaultPath
	}
	txt[TXTKeyPath] = path
	return txt
}

// DecodeTXT parses the TXT records of a daemon. Instance and Port are left
// for the caller.
func DecodeTXT(txt TXTRecordMap) (*Info, error) {
	ver, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	if ver != TXTVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidTXTRecord, ver)
	}
	state, ok := txt[TXTKeyState]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyState)
	}
	info := &Info{State: state, Path: txt[TXTKeyPath]}
	if info.Path == "" {
		info.Path = DefaultPath
	}
	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: instance name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}

// DefaultInstanceName returns "powerd-<host>" cut to the label limit.
func DefaultInstanceName(host string) string {
	host, _, _ = strings.Cut(host, ".")
	if host == "" {
		host = "localhost"
	}
	name := "powerd-" + host
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}
