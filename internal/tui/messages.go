package tui

import (
	"github.com/matheuskafuri/devshelf/internal/dataset"
)

type pageLoadedMsg struct {
	kind  dataset.Kind
	store *dataset.Store
	err   error
}

type datasetChangedMsg struct {
	path string
}

type updateAvailableMsg struct {
	version string
}

type openErrMsg struct {
	err error
}
