package ui

import (
	"pully/internal/model"
	"pully/internal/progress"
)

type jobUpdateMsg struct {
	U progress.Update
}

type jobLogMsg struct {
	L progress.Log
}

type jobResultMsg struct {
	R progress.Result
}

type jobDoneMsg struct {
	Results model.Results
	Err     error
}
