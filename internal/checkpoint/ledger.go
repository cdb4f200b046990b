package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultFileName names the ledger document inside the working directory.
	DefaultFileName = "tfs_git_checkpoint.json"

	ledgerFilePermissionsConstant      = 0o644
	ledgerIndentPrefixConstant         = ""
	ledgerIndentConstant               = "    "
	temporaryFilePatternConstant       = "tfs_git_checkpoint-*.json"
	ledgerPathRequiredMessageConstant  = "ledger file path required"
	ledgerReadErrorTemplateConstant    = "unable to read checkpoint ledger: %w"
	ledgerDecodeErrorTemplateConstant  = "unable to decode checkpoint ledger: %w"
	ledgerEncodeErrorTemplateConstant  = "unable to encode checkpoint ledger: %w"
	ledgerWriteErrorTemplateConstant   = "unable to write checkpoint ledger: %w"
	ledgerNotLoadedMessageConstant     = "checkpoint ledger not loaded"
	emptyLedgerDocumentContentConstant = "{}"
)

var (
	// ErrLedgerPathRequired indicates the ledger was constructed without a file path.
	ErrLedgerPathRequired = errors.New(ledgerPathRequiredMessageConstant)
	// ErrLedgerNotLoaded indicates Contains or Record was called before Load.
	ErrLedgerNotLoaded = errors.New(ledgerNotLoadedMessageConstant)
)

// Ledger tracks completed migrations keyed by collection and project.
//
// Entries are append-only: a repository recorded once is never removed, and
// recording it again neither grows the document nor touches the disk.
type Ledger struct {
	filePath string
	entries  map[string]map[string][]string
}

// NewLedger constructs a ledger persisted at the supplied file path.
func NewLedger(filePath string) (*Ledger, error) {
	trimmedFilePath := strings.TrimSpace(filePath)
	if len(trimmedFilePath) == 0 {
		return nil, ErrLedgerPathRequired
	}
	return &Ledger{filePath: trimmedFilePath}, nil
}

// Load reads the ledger document, creating an empty one when it does not exist.
func (ledger *Ledger) Load() error {
	documentBytes, readError := os.ReadFile(ledger.filePath)
	if readError != nil {
		if !os.IsNotExist(readError) {
			return fmt.Errorf(ledgerReadErrorTemplateConstant, readError)
		}
		if writeError := os.WriteFile(ledger.filePath, []byte(emptyLedgerDocumentContentConstant), ledgerFilePermissionsConstant); writeError != nil {
			return fmt.Errorf(ledgerWriteErrorTemplateConstant, writeError)
		}
		documentBytes = []byte(emptyLedgerDocumentContentConstant)
	}

	entries := map[string]map[string][]string{}
	if decodeError := json.Unmarshal(documentBytes, &entries); decodeError != nil {
		return fmt.Errorf(ledgerDecodeErrorTemplateConstant, decodeError)
	}

	ledger.entries = entries
	return nil
}

// Contains reports whether the repository was already recorded for the
// collection and project.
func (ledger *Ledger) Contains(collection string, project string, repositoryName string) bool {
	if ledger.entries == nil {
		return false
	}
	projectEntries, collectionExists := ledger.entries[collection]
	if !collectionExists {
		return false
	}
	repositoryNames, projectExists := projectEntries[project]
	if !projectExists {
		return false
	}
	for _, recordedName := range repositoryNames {
		if recordedName == repositoryName {
			return true
		}
	}
	return false
}

// Record appends the repository to the ledger and rewrites the document.
//
// Recording an already-present repository is a no-op and performs no disk write.
func (ledger *Ledger) Record(collection string, project string, repositoryName string) error {
	if ledger.entries == nil {
		return ErrLedgerNotLoaded
	}
	if ledger.Contains(collection, project, repositoryName) {
		return nil
	}

	projectEntries, collectionExists := ledger.entries[collection]
	if !collectionExists {
		projectEntries = map[string][]string{}
		ledger.entries[collection] = projectEntries
	}
	projectEntries[project] = append(projectEntries[project], repositoryName)

	return ledger.persist()
}

// persist rewrites the whole document through a temporary file and rename so a
// crash mid-write never leaves a truncated ledger behind.
func (ledger *Ledger) persist() error {
	documentBytes, encodeError := json.MarshalIndent(ledger.entries, ledgerIndentPrefixConstant, ledgerIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(ledgerEncodeErrorTemplateConstant, encodeError)
	}

	ledgerDirectory := filepath.Dir(ledger.filePath)
	temporaryFile, temporaryCreationError := os.CreateTemp(ledgerDirectory, temporaryFilePatternConstant)
	if temporaryCreationError != nil {
		return fmt.Errorf(ledgerWriteErrorTemplateConstant, temporaryCreationError)
	}
	temporaryFilePath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(documentBytes); writeError != nil {
		temporaryFile.Close()
		os.Remove(temporaryFilePath)
		return fmt.Errorf(ledgerWriteErrorTemplateConstant, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		os.Remove(temporaryFilePath)
		return fmt.Errorf(ledgerWriteErrorTemplateConstant, closeError)
	}

	if renameError := os.Rename(temporaryFilePath, ledger.filePath); renameError != nil {
		os.Remove(temporaryFilePath)
		return fmt.Errorf(ledgerWriteErrorTemplateConstant, renameError)
	}

	return nil
}
