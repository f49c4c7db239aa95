package gui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/talent-screening-agent/internal/agent"
	"github.com/fmuoria/talent-screening-agent/internal/config"
	"github.com/fmuoria/talent-screening-agent/internal/export"
	"github.com/fmuoria/talent-screening-agent/internal/ingestion"
	"github.com/fmuoria/talent-screening-agent/internal/models"
	"github.com/fmuoria/talent-screening-agent/internal/report"
	"github.com/fmuoria/talent-screening-agent/internal/session"
)

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	agent      *agent.ScreeningAgent
	session    *session.Session
	renderer   *report.PDFRenderer
	cancelFunc context.CancelFunc

	// UI Components
	jdLabel         *widget.Label
	resumesLabel    *widget.Label
	subjectEntry    *widget.Entry
	fetchGmailBtn   *widget.Button
	processBtn      *widget.Button
	cancelBtn       *widget.Button
	progressBar     *widget.ProgressBar
	progressLabel   *widget.Label
	evaluationsList *widget.List
	detailsText     *widget.Label
	saveReportBtn   *widget.Button
	rankingTable    *widget.Table
	exportBtn       *widget.Button
	clearBtn        *widget.Button

	pending     []ingestion.Document
	evaluations []models.EvaluationResult
	selected    int
	ranked      []models.RankedCandidate
}

// NewApp creates a new GUI application around a screening agent
func NewApp(cfg *config.Config, screeningAgent *agent.ScreeningAgent) *App {
	a := app.New()
	w := a.NewWindow("Talent Screening Agent")
	w.Resize(fyne.NewSize(1100, 750))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		agent:      screeningAgent,
		session:    session.New(),
		renderer:   report.NewPDFRenderer(),
		selected:   -1,
	}

	guiApp.setupUI()

	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Screen Resumes", a.createScreeningTab()),
		container.NewTabItem("Dashboard", a.createDashboardTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createScreeningTab creates the upload and evaluation tab
func (a *App) createScreeningTab() fyne.CanvasObject {
	// Job description section
	a.jdLabel = widget.NewLabel("Job description: none (JD match not applicable)")
	jdBtn := widget.NewButton("Upload Job Description...", a.handlePickJobDescription)

	jdSection := container.NewVBox(
		widget.NewLabel("Job Description"),
		container.NewHBox(jdBtn, a.jdLabel),
	)

	// Resume section
	a.resumesLabel = widget.NewLabel("No resumes selected")
	addFileBtn := widget.NewButton("Add Resume...", a.handleAddResume)
	addFolderBtn := widget.NewButton("Add Folder...", a.handleAddFolder)

	a.subjectEntry = widget.NewEntry()
	a.subjectEntry.SetPlaceHolder("e.g., Job Application")
	a.fetchGmailBtn = widget.NewButton("Fetch from Gmail", a.handleFetchGmail)

	resumeSection := container.NewVBox(
		widget.NewLabel("Resumes (PDF, DOCX, TXT)"),
		container.NewHBox(addFileBtn, addFolderBtn, a.resumesLabel),
		container.NewBorder(nil, nil, widget.NewLabel("Email subject"), a.fetchGmailBtn, a.subjectEntry),
	)

	// Progress section
	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.processBtn = widget.NewButton("Evaluate", a.handleProcess)
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	progressSection := container.NewVBox(
		a.progressLabel,
		a.progressBar,
		container.NewHBox(a.processBtn, a.cancelBtn),
	)

	// Per-candidate results
	a.evaluationsList = widget.NewList(
		func() int {
			return len(a.evaluations)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			r := a.evaluations[id]
			item.(*widget.Label).SetText(fmt.Sprintf("%s (%d, %s)", r.Name, r.Score, r.Decision))
		},
	)
	a.detailsText = widget.NewLabel("Select a candidate to see the evaluation")
	a.detailsText.Wrapping = fyne.TextWrapWord
	a.saveReportBtn = widget.NewButton("Save Report...", a.handleSaveReport)
	a.saveReportBtn.Disable()

	a.evaluationsList.OnSelected = func(id widget.ListItemID) {
		a.selected = id
		a.detailsText.SetText(EvaluationDetails(a.evaluations[id]))
		a.saveReportBtn.Enable()
	}

	results := container.NewHSplit(
		a.evaluationsList,
		container.NewBorder(nil, a.saveReportBtn, nil, nil, container.NewVScroll(a.detailsText)),
	)
	results.SetOffset(0.35)

	top := container.NewVBox(
		jdSection,
		widget.NewSeparator(),
		resumeSection,
		widget.NewSeparator(),
		progressSection,
		widget.NewSeparator(),
		widget.NewLabel("Evaluations"),
	)

	return container.NewBorder(top, nil, nil, nil, results)
}

// createDashboardTab creates the ranked candidate table
func (a *App) createDashboardTab() fyne.CanvasObject {
	a.rankingTable = widget.NewTable(
		func() (int, int) {
			return len(a.ranked) + 1, len(rankingHeaders) // +1 for header
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			label.TextStyle = fyne.TextStyle{Bold: id.Row == 0}
			label.SetText(RankingCell(a.ranked, id.Row, id.Col))
		},
	)
	a.rankingTable.SetColumnWidth(0, 60)
	a.rankingTable.SetColumnWidth(1, 300)
	a.rankingTable.SetColumnWidth(2, 80)
	a.rankingTable.SetColumnWidth(3, 180)

	a.exportBtn = widget.NewButton("Export to Excel", a.handleExport)
	a.exportBtn.Disable()
	a.clearBtn = widget.NewButton("Clear Evaluations", a.handleClear)
	a.clearBtn.Disable()

	return container.NewBorder(
		widget.NewLabel("Candidate Ranking"),
		container.NewHBox(a.exportBtn, a.clearBtn),
		nil, nil,
		a.rankingTable,
	)
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	uploadsEntry := widget.NewEntry()
	uploadsEntry.SetText(a.config.UploadsDir)

	reportsEntry := widget.NewEntry()
	reportsEntry.SetText(a.config.ReportsDir)

	skillsEntry := widget.NewEntry()
	skillsEntry.SetText(a.config.SkillsFile)
	skillsEntry.SetPlaceHolder("built-in skill table")

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.GmailCredentialsPath)

	gmailTokenEntry := widget.NewEntry()
	gmailTokenEntry.SetText(a.config.GmailTokenPath)

	bucketEntry := widget.NewEntry()
	bucketEntry.SetText(a.config.S3Bucket)

	endpointEntry := widget.NewEntry()
	endpointEntry.SetText(a.config.S3Endpoint)

	amqpEntry := widget.NewPasswordEntry()
	amqpEntry.SetText(a.config.AMQPURL)

	browse := func(entry *widget.Entry) *widget.Button {
		return widget.NewButton("Browse...", func() {
			dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
				if err == nil && uc != nil {
					entry.SetText(uc.URI().Path())
					uc.Close()
				}
			}, a.mainWindow)
		})
	}

	form := widget.NewForm(
		widget.NewFormItem("Uploads Folder", uploadsEntry),
		widget.NewFormItem("Reports Folder", reportsEntry),
		widget.NewFormItem("Skills File", container.NewBorder(nil, nil, nil, browse(skillsEntry), skillsEntry)),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, browse(gmailCredsEntry), gmailCredsEntry)),
		widget.NewFormItem("Gmail Token", gmailTokenEntry),
		widget.NewFormItem("S3 Bucket", bucketEntry),
		widget.NewFormItem("S3 Endpoint", endpointEntry),
		widget.NewFormItem("RabbitMQ URL", amqpEntry),
	)

	apply := func() {
		a.config.UploadsDir = uploadsEntry.Text
		a.config.ReportsDir = reportsEntry.Text
		a.config.SkillsFile = skillsEntry.Text
		a.config.GmailCredentialsPath = gmailCredsEntry.Text
		a.config.GmailTokenPath = gmailTokenEntry.Text
		a.config.S3Bucket = bucketEntry.Text
		a.config.S3Endpoint = endpointEntry.Text
		a.config.AMQPURL = amqpEntry.Text
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		apply()
		if err := a.config.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Settings saved successfully.\nSkill table and RabbitMQ changes apply on restart.", a.mainWindow)
	})

	validateBtn := widget.NewButton("Validate", func() {
		apply()
		if err := a.config.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, validateBtn),
	)
}

// handlePickJobDescription loads a job description file into the session
func (a *App) handlePickJobDescription() {
	dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		doc, err := readDocument(uc)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		jd, err := a.agent.LoadJobDescription(a.session, doc)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.jdLabel.SetText(JobDescriptionSummary(jd))
	}, a.mainWindow)
}

// handleAddResume queues a single resume
func (a *App) handleAddResume() {
	dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()

		doc, err := readDocument(uc)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.queue([]ingestion.Document{doc})
	}, a.mainWindow)
}

// handleAddFolder queues every supported resume in a folder
func (a *App) handleAddFolder() {
	dialog.ShowFolderOpen(func(lu fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if lu == nil {
			return
		}

		docs, err := ingestion.NewFileHandler(lu.Path()).Documents(context.Background())
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if len(docs) == 0 {
			dialog.ShowInformation("No resumes", "No PDF, DOCX or TXT files found in "+lu.Name(), a.mainWindow)
			return
		}
		a.queue(docs)
	}, a.mainWindow)
}

// handleFetchGmail downloads resume attachments into the uploads folder and queues them
func (a *App) handleFetchGmail() {
	subject := strings.TrimSpace(a.subjectEntry.Text)
	if subject == "" {
		dialog.ShowError(fmt.Errorf("please enter an email subject filter"), a.mainWindow)
		return
	}

	if _, err := os.Stat(a.config.GmailCredentialsPath); err != nil {
		dialog.ShowError(fmt.Errorf("%s not found. Please configure Gmail credentials in Settings", a.config.GmailCredentialsPath), a.mainWindow)
		return
	}

	a.fetchGmailBtn.Disable()
	a.progressLabel.SetText("Fetching emails from Gmail... check the console for the OAuth URL on first use")

	go func() {
		ctx := context.Background()
		docs, err := a.fetchGmail(ctx, subject)

		fyne.Do(func() {
			a.fetchGmailBtn.Enable()
			if err != nil {
				a.progressLabel.SetText("Error: " + err.Error())
				dialog.ShowError(err, a.mainWindow)
				return
			}
			a.progressLabel.SetText(fmt.Sprintf("Fetched %d attachments from Gmail", len(docs)))
			a.queue(docs)
		})
	}()
}

func (a *App) fetchGmail(ctx context.Context, subject string) ([]ingestion.Document, error) {
	handler, err := ingestion.NewGmailHandler(ctx, a.config.GmailCredentialsPath, a.config.GmailTokenPath, a.config.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gmail handler: %w", err)
	}

	files := ingestion.NewFileHandler(a.config.UploadsDir)
	if err := files.ClearUploads(); err != nil {
		return nil, fmt.Errorf("failed to clear uploads: %w", err)
	}
	if _, err := handler.FetchAttachments(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to fetch Gmail attachments: %w", err)
	}
	return files.Documents(ctx)
}

func (a *App) queue(docs []ingestion.Document) {
	a.pending = append(a.pending, docs...)
	a.resumesLabel.SetText(fmt.Sprintf("%d resumes selected", len(a.pending)))
}

// handleProcess evaluates the queued resumes
func (a *App) handleProcess() {
	if len(a.pending) == 0 {
		dialog.ShowError(fmt.Errorf("please add at least one resume"), a.mainWindow)
		return
	}

	docs := a.pending
	a.pending = nil
	a.resumesLabel.SetText("No resumes selected")

	a.processBtn.Disable()
	a.cancelBtn.Enable()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelFunc = cancel

	a.agent.SetProgressCallback(func(current, total int, message string) {
		fyne.Do(func() {
			a.progressBar.SetValue(float64(current) / float64(total))
			a.progressLabel.SetText(message)
		})
	})

	go func() {
		defer cancel()
		batch, err := a.agent.ProcessDocuments(ctx, a.session, docs)

		// All UI updates must be done on the main thread
		fyne.Do(func() {
			a.processBtn.Enable()
			a.cancelBtn.Disable()

			a.evaluations = append(a.evaluations, batch.Evaluations...)
			a.evaluationsList.Refresh()
			a.refreshRanking()

			if err != nil {
				if errors.Is(err, context.Canceled) {
					a.progressLabel.SetText("Processing canceled")
				} else {
					a.progressLabel.SetText("Error: " + err.Error())
					dialog.ShowError(err, a.mainWindow)
				}
				return
			}

			a.progressLabel.SetText(BatchSummary(batch))
			if len(batch.Skipped) > 0 {
				dialog.ShowInformation("Some resumes were skipped", SkippedSummary(batch.Skipped), a.mainWindow)
			}

			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Evaluation Complete",
				Content: BatchSummary(batch),
			})
		})
	}()
}

// handleCancel handles cancellation of processing
func (a *App) handleCancel() {
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.progressLabel.SetText("Canceling...")
	}
}

// handleSaveReport writes the selected candidate's PDF report
func (a *App) handleSaveReport() {
	if a.selected < 0 || a.selected >= len(a.evaluations) {
		return
	}
	result := a.evaluations[a.selected]

	pdf, err := a.renderer.Render(result.ReportFields())
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}

	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()

		if _, err := uc.Write(pdf); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save report: %w", err), a.mainWindow)
			return
		}
		log.Printf("Saved report for %s to %s", result.Name, uc.URI().Path())
	}, a.mainWindow)
	save.SetFileName(report.FileName(result.Name))
	save.Show()
}

// handleExport handles exporting the ranking to Excel
func (a *App) handleExport() {
	if a.session.Len() == 0 {
		dialog.ShowError(fmt.Errorf("no candidates to export"), a.mainWindow)
		return
	}

	timestamp := time.Now().Format("2006-01-02_150405")
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		if err := export.WriteExcel(export.NewDashboard(a.session, time.Now()), uc); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Ranking exported successfully to "+filepath.Base(uc.URI().Path()), a.mainWindow)
	}, a.mainWindow)
	save.SetFileName(fmt.Sprintf("Candidate_Ranking_%s.xlsx", timestamp))
	save.Show()
}

// handleClear clears the evaluated candidates
func (a *App) handleClear() {
	dialog.ShowConfirm("Clear Evaluations", "Remove every evaluated candidate from the dashboard?", func(ok bool) {
		if !ok {
			return
		}
		a.session.Reset()
		a.evaluations = nil
		a.selected = -1
		a.evaluationsList.UnselectAll()
		a.evaluationsList.Refresh()
		a.detailsText.SetText("Select a candidate to see the evaluation")
		a.saveReportBtn.Disable()
		a.refreshRanking()
		a.progressLabel.SetText("Evaluations cleared")
	}, a.mainWindow)
}

func (a *App) refreshRanking() {
	a.ranked = a.session.Ranked()
	a.rankingTable.Refresh()
	if len(a.ranked) > 0 {
		a.exportBtn.Enable()
		a.clearBtn.Enable()
	} else {
		a.exportBtn.Disable()
		a.clearBtn.Disable()
	}
}

// readDocument reads a picked file into memory
func readDocument(uc fyne.URIReadCloser) (ingestion.Document, error) {
	content, err := io.ReadAll(uc)
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("failed to read %s: %w", uc.URI().Name(), err)
	}
	return ingestion.Document{Name: uc.URI().Name(), Content: content}, nil
}
