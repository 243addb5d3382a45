package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stealthcompany.com/wardconsole/internal/pages"
	"stealthcompany.com/wardconsole/internal/resources"
)

// run loads the page, applies the optional action and prints the resulting view.
// The view is printed even when the action fails so the user sees the row state.
func (a *app) run(ctx context.Context, p pages.Page, act func(ctx context.Context) error) error {
	if err := pages.Authorize(a.holder, pages.RolesOf(p)...); err != nil {
		return err
	}
	if err := p.Load(ctx); err != nil {
		_ = a.render(p.View())
		return err
	}
	if act != nil {
		if err := act(ctx); err != nil {
			log.Debug().Err(err).Str("page", p.Name()).Msg("Action failed")
			_ = a.render(p.View())
			return err
		}
	}
	return a.render(p.View())
}

func stayFlag(cmd *cobra.Command) {
	cmd.Flags().Int64("stay", 0, "inpatient stay id")
	_ = cmd.MarkFlagRequired("stay")
}

func getInt64(cmd *cobra.Command, name string) int64 {
	v, _ := cmd.Flags().GetInt64(name)
	return v
}

func getString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func (a *app) patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List the patients in your care grouped by ward",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pages.NewNursePatients(a.deps)
			p.SetFilter(pages.PatientFilter{
				Ward:   getString(cmd, "ward"),
				Search: getString(cmd, "search"),
			})
			return a.run(cmd.Context(), p, nil)
		},
	}
	cmd.Flags().String("ward", "", "only show this ward")
	cmd.Flags().String("search", "", "match patient name, MRN or bed")
	return cmd
}

func (a *app) workflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Nursing workflow steps of a stay",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the workflow checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), pages.NewWorkflow(a.deps, getInt64(cmd, "stay")), nil)
		},
	}
	stayFlag(list)

	complete := &cobra.Command{
		Use:   "complete",
		Short: "Mark a step as done",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := pages.NewWorkflow(a.deps, getInt64(cmd, "stay"))
			return a.run(cmd.Context(), w, func(ctx context.Context) error {
				return w.Complete(ctx, pages.CompleteStepInput{
					StepID: getInt64(cmd, "step"),
					Notes:  getString(cmd, "notes"),
				})
			})
		},
	}
	stayFlag(complete)
	complete.Flags().Int64("step", 0, "workflow step id")
	complete.Flags().String("notes", "", "optional notes")
	_ = complete.MarkFlagRequired("step")

	skip := &cobra.Command{
		Use:   "skip",
		Short: "Skip a step with a reason",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := pages.NewWorkflow(a.deps, getInt64(cmd, "stay"))
			return a.run(cmd.Context(), w, func(ctx context.Context) error {
				return w.Skip(ctx, pages.ReasonInput{ID: getInt64(cmd, "step"), Reason: getString(cmd, "reason")})
			})
		},
	}
	stayFlag(skip)
	skip.Flags().Int64("step", 0, "workflow step id")
	skip.Flags().String("reason", "", "why the step is skipped")
	_ = skip.MarkFlagRequired("step")

	cmd.AddCommand(list, complete, skip)
	return cmd
}

func (a *app) bedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beds",
		Short: "Assign and transfer beds",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show active stays and available beds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), pages.NewBedAssignment(a.deps), nil)
		},
	}

	assign := &cobra.Command{
		Use:   "assign",
		Short: "Assign an available bed to a stay",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := pages.NewBedAssignment(a.deps)
			return a.run(cmd.Context(), b, func(ctx context.Context) error {
				return b.Assign(ctx, pages.AssignBedInput{StayID: getInt64(cmd, "stay"), BedID: getInt64(cmd, "bed")})
			})
		},
	}
	stayFlag(assign)
	assign.Flags().Int64("bed", 0, "bed id")

	transfer := &cobra.Command{
		Use:   "transfer",
		Short: "Move a stay to another bed",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := pages.NewBedAssignment(a.deps)
			return a.run(cmd.Context(), b, func(ctx context.Context) error {
				return b.Transfer(ctx, pages.TransferBedInput{
					StayID: getInt64(cmd, "stay"),
					BedID:  getInt64(cmd, "bed"),
					Reason: getString(cmd, "reason"),
				})
			})
		},
	}
	stayFlag(transfer)
	transfer.Flags().Int64("bed", 0, "target bed id")
	transfer.Flags().String("reason", "", "why the patient is moved")

	cmd.AddCommand(list, assign, transfer)
	return cmd
}

func (a *app) medsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meds",
		Short: "Medication round of a stay",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show medication orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), pages.NewMedicationAdministration(a.deps, getInt64(cmd, "stay")), nil)
		},
	}
	stayFlag(list)

	administer := &cobra.Command{
		Use:   "administer",
		Short: "Record a dose as given",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := pages.NewMedicationAdministration(a.deps, getInt64(cmd, "stay"))
			return a.run(cmd.Context(), m, func(ctx context.Context) error {
				return m.Administer(ctx, pages.AdministerInput{OrderID: getInt64(cmd, "order"), Notes: getString(cmd, "notes")})
			})
		},
	}
	stayFlag(administer)
	administer.Flags().Int64("order", 0, "medication order id")
	administer.Flags().String("notes", "", "optional notes")
	_ = administer.MarkFlagRequired("order")

	cmd.AddCommand(list, administer,
		a.medsReasonCmd("miss", "Record a dose as missed", (*pages.MedicationAdministration).Miss),
		a.medsReasonCmd("hold", "Hold a dose", (*pages.MedicationAdministration).Hold),
	)
	return cmd
}

func (a *app) medsReasonCmd(use, short string, act func(*pages.MedicationAdministration, context.Context, pages.ReasonInput) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := pages.NewMedicationAdministration(a.deps, getInt64(cmd, "stay"))
			return a.run(cmd.Context(), m, func(ctx context.Context) error {
				return act(m, ctx, pages.ReasonInput{ID: getInt64(cmd, "order"), Reason: getString(cmd, "reason")})
			})
		},
	}
	stayFlag(cmd)
	cmd.Flags().Int64("order", 0, "medication order id")
	cmd.Flags().String("reason", "", "reason for the record")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

func (a *app) pharmacyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pharmacy",
		Short: "Prescription verification queue",
	}

	queue := &cobra.Command{
		Use:   "queue",
		Short: "Show prescriptions awaiting verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), pages.NewPharmacistQueue(a.deps), nil)
		},
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Verify a prescription group",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pages.NewPharmacistQueue(a.deps)
			return a.run(cmd.Context(), q, func(ctx context.Context) error {
				return q.Verify(ctx, pages.VerifyGroupInput{GroupID: getInt64(cmd, "group")})
			})
		},
	}
	verify.Flags().Int64("group", 0, "prescription group id")
	_ = verify.MarkFlagRequired("group")

	reject := &cobra.Command{
		Use:   "reject",
		Short: "Reject a prescription group with a reason",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pages.NewPharmacistQueue(a.deps)
			return a.run(cmd.Context(), q, func(ctx context.Context) error {
				return q.Reject(ctx, pages.ReasonInput{ID: getInt64(cmd, "group"), Reason: getString(cmd, "reason")})
			})
		},
	}
	reject.Flags().Int64("group", 0, "prescription group id")
	reject.Flags().String("reason", "", "why the prescription is rejected")
	_ = reject.MarkFlagRequired("group")

	cmd.AddCommand(queue, verify, reject)
	return cmd
}

func (a *app) admissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admissions",
		Short: "Admission requests",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show admission requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), pages.NewAdmissionRequests(a.deps, getString(cmd, "status")), nil)
		},
	}
	list.Flags().String("status", "", "request status, PENDING when empty")

	approve := &cobra.Command{
		Use:   "approve",
		Short: "Approve an admission into a department",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pages.NewAdmissionRequests(a.deps, "")
			in := pages.ApproveAdmissionInput{
				RequestID:    getInt64(cmd, "request"),
				DepartmentID: getInt64(cmd, "department"),
				Notes:        getString(cmd, "notes"),
			}
			if cmd.Flags().Changed("bed") {
				bed := getInt64(cmd, "bed")
				in.BedID = &bed
			}
			return a.run(cmd.Context(), p, func(ctx context.Context) error {
				return p.Approve(ctx, in)
			})
		},
	}
	approve.Flags().Int64("request", 0, "admission request id")
	approve.Flags().Int64("department", 0, "department to admit into")
	approve.Flags().Int64("bed", 0, "optional bed id")
	approve.Flags().String("notes", "", "optional notes")
	_ = approve.MarkFlagRequired("request")

	reject := &cobra.Command{
		Use:   "reject",
		Short: "Reject an admission request with a reason",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pages.NewAdmissionRequests(a.deps, "")
			return a.run(cmd.Context(), p, func(ctx context.Context) error {
				return p.Reject(ctx, pages.ReasonInput{ID: getInt64(cmd, "request"), Reason: getString(cmd, "reason")})
			})
		},
	}
	reject.Flags().Int64("request", 0, "admission request id")
	reject.Flags().String("reason", "", "why the request is rejected")
	_ = reject.MarkFlagRequired("request")

	cmd.AddCommand(list, approve, reject)
	return cmd
}

func (a *app) dischargeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discharge",
		Short: "Discharge plans",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show discharge plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), pages.NewDischargePlans(a.deps, getString(cmd, "status")), nil)
		},
	}
	list.Flags().String("status", "", "plan status filter")

	create := &cobra.Command{
		Use:   "create",
		Short: "Draft a discharge plan for a stay",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := pages.NewDischargePlans(a.deps, "")
			return a.run(cmd.Context(), d, func(ctx context.Context) error {
				return d.Create(ctx, pages.CreatePlanInput{
					StayID:       getInt64(cmd, "stay"),
					PlannedDate:  getString(cmd, "date"),
					Destination:  getString(cmd, "destination"),
					Instructions: getString(cmd, "instructions"),
					FollowUp:     getString(cmd, "follow-up"),
				})
			})
		},
	}
	stayFlag(create)
	create.Flags().String("date", "", "planned discharge date, YYYY-MM-DD")
	create.Flags().String("destination", "HOME", "discharge destination")
	create.Flags().String("instructions", "", "discharge instructions")
	create.Flags().String("follow-up", "", "follow-up arrangements")

	approve := a.planCmd("approve", "Approve a discharge plan", (*pages.DischargePlans).Approve)
	complete := a.planCmd("complete", "Complete an approved discharge", (*pages.DischargePlans).Complete)

	reject := &cobra.Command{
		Use:   "reject",
		Short: "Reject a discharge plan with a reason",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := pages.NewDischargePlans(a.deps, "")
			return a.run(cmd.Context(), d, func(ctx context.Context) error {
				return d.Reject(ctx, pages.ReasonInput{ID: getInt64(cmd, "plan"), Reason: getString(cmd, "reason")})
			})
		},
	}
	reject.Flags().Int64("plan", 0, "discharge plan id")
	reject.Flags().String("reason", "", "why the plan is rejected")
	_ = reject.MarkFlagRequired("plan")

	cmd.AddCommand(list, create, approve, reject, complete)
	return cmd
}

func (a *app) planCmd(use, short string, act func(*pages.DischargePlans, context.Context, pages.PlanInput) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := pages.NewDischargePlans(a.deps, "")
			return a.run(cmd.Context(), d, func(ctx context.Context) error {
				return act(d, ctx, pages.PlanInput{PlanID: getInt64(cmd, "plan")})
			})
		},
	}
	cmd.Flags().Int64("plan", 0, "discharge plan id")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func (a *app) chartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Patient chart of a stay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), pages.NewPatientChart(a.deps, getInt64(cmd, "stay")), nil)
		},
	}
	cmd.PersistentFlags().Int64("stay", 0, "inpatient stay id")
	_ = cmd.MarkPersistentFlagRequired("stay")

	vitals := &cobra.Command{
		Use:   "vitals",
		Short: "Record a set of vital signs",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := resources.VitalSignsInput{}
			if cmd.Flags().Changed("temp") {
				v, _ := cmd.Flags().GetFloat64("temp")
				in.Temperature = &v
			}
			in.HeartRate = optionalInt(cmd, "hr")
			in.RespiratoryRate = optionalInt(cmd, "rr")
			in.SystolicBP = optionalInt(cmd, "sys")
			in.DiastolicBP = optionalInt(cmd, "dia")
			in.OxygenSaturation = optionalInt(cmd, "spo2")
			in.PainScore = optionalInt(cmd, "pain")

			c := pages.NewPatientChart(a.deps, getInt64(cmd, "stay"))
			return a.run(cmd.Context(), c, func(ctx context.Context) error {
				return c.RecordVitals(ctx, in)
			})
		},
	}
	vitals.Flags().Float64("temp", 0, "temperature in °C")
	vitals.Flags().Int("hr", 0, "heart rate")
	vitals.Flags().Int("rr", 0, "respiratory rate")
	vitals.Flags().Int("sys", 0, "systolic blood pressure")
	vitals.Flags().Int("dia", 0, "diastolic blood pressure")
	vitals.Flags().Int("spo2", 0, "oxygen saturation")
	vitals.Flags().Int("pain", 0, "pain score 0-10")

	note := &cobra.Command{
		Use:   "note",
		Short: "Add a nursing note",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := pages.NewPatientChart(a.deps, getInt64(cmd, "stay"))
			return a.run(cmd.Context(), c, func(ctx context.Context) error {
				return c.AddNote(ctx, resources.NursingNoteInput{
					Category: getString(cmd, "category"),
					Content:  getString(cmd, "content"),
				})
			})
		},
	}
	note.Flags().String("category", "GENERAL", "note category")
	note.Flags().String("content", "", "note text")

	assess := &cobra.Command{
		Use:   "assess",
		Short: "Record a safety assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			score, _ := cmd.Flags().GetInt("score")
			c := pages.NewPatientChart(a.deps, getInt64(cmd, "stay"))
			return a.run(cmd.Context(), c, func(ctx context.Context) error {
				return c.CreateAssessment(ctx, resources.SafetyAssessmentInput{
					AssessmentType: getString(cmd, "type"),
					Score:          score,
					Notes:          getString(cmd, "notes"),
				})
			})
		},
	}
	assess.Flags().String("type", "", "assessment type, e.g. FALL_RISK")
	assess.Flags().Int("score", 0, "assessment score")
	assess.Flags().String("notes", "", "optional notes")

	cmd.AddCommand(vitals, note, assess)
	return cmd
}

func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}
