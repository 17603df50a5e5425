package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/powledger/executor"
	"github.com/luca-patrignani/powledger/ledger"
)

func getBlockBox(b ledger.Block) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	title := pterm.LightYellow("|BLOCK " + strconv.FormatUint(b.Index, 10) + "|")
	if b.Index == 0 {
		title = pterm.LightCyan("|GENESIS|")
	}
	return pbox.WithTitle(title).WithTitleTopLeft().Sprintf(
		"Index: %d\nTimestamp: %d (%s)\nPrevious Hash: %s\nData: %s\nNonce: %d\nHash: %s",
		b.Index,
		b.Timestamp,
		time.Unix(b.Timestamp, 0).UTC().Format(time.RFC3339),
		b.PrevHash,
		b.Payload,
		b.Nonce,
		b.Hash,
	)
}

func printChain(blocks []ledger.Block) {
	var rows [][]pterm.Panel
	for _, b := range blocks {
		rows = append(rows, []pterm.Panel{{Data: getBlockBox(b)}})
	}
	pterm.DefaultPanel.WithPanels(rows).Render()
}

func getValidityMessage(err error) string {
	if err == nil {
		return pterm.LightGreen("Blockchain is valid.")
	}
	msg := "Blockchain is NOT valid."
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		msg += " " + verr.Error()
	}
	return pterm.LightRed(msg)
}

func getReceiptRows(receipts []executor.Receipt) [][]string {
	rows := [][]string{{"Block", "Accepted", "Reference", "Detail"}}
	for _, r := range receipts {
		detail := r.Outcome.Detail
		if r.Err != nil {
			detail = r.Err.Error()
		}
		rows = append(rows, []string{
			strconv.FormatUint(r.Index, 10),
			strconv.FormatBool(r.Err == nil && r.Outcome.Accepted),
			r.Outcome.Reference,
			detail,
		})
	}
	return rows
}

func printReceipts(receipts []executor.Receipt) error {
	return pterm.DefaultTable.WithHasHeader().WithData(getReceiptRows(receipts)).Render()
}
