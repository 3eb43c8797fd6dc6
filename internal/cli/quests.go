package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/tourcompanion/internal/model"
)

func newQuestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Quest planning commands",
	}

	cmd.AddCommand(newQuestsPlanCmd())

	return cmd
}

func newQuestsPlanCmd() *cobra.Command {
	var add, remove []int
	var clearFirst bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a quest plan",
		Long: `Apply planner operations in order: --clear first, then every --add,
then every --remove. Adds beyond the planner capacity are rejected.`,
		Example: `  tourcompanion quests plan --add 3 --add 7 --add 3
  tourcompanion quests plan --add 1,2,3,4,5 --remove 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var steps []PlanStep

			if clearFirst {
				app.Planner.Clear()
				steps = append(steps, PlanStep{Op: "clear"})
			}
			for _, id := range add {
				quest := questFor(model.QuestID(id))
				steps = append(steps, PlanStep{Op: "add", QuestID: quest.ID, Result: app.Planner.Add(quest)})
			}
			for _, id := range remove {
				app.Planner.Remove(model.QuestID(id))
				steps = append(steps, PlanStep{Op: "remove", QuestID: model.QuestID(id)})
			}

			output(cmd).Print(PlanView{
				Steps:    steps,
				Quests:   app.Planner.Items(),
				Capacity: app.Planner.Cap(),
			})
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&add, "add", nil, "Quest IDs to add")
	cmd.Flags().IntSliceVar(&remove, "remove", nil, "Quest IDs to remove")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "Clear the plan first")

	return cmd
}

func questFor(id model.QuestID) model.Quest {
	return model.Quest{ID: id, Title: fmt.Sprintf("Quest %d", id)}
}
