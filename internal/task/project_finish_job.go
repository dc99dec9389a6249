package task

import (
	"time"

	"github.com/blues/mes/internal/config"
	"github.com/blues/mes/internal/engine"
	"github.com/blues/mes/internal/logger"
	"github.com/blues/mes/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// ProjectFinishJob 项目结算任务。里程碑到期可使项目进入可结算阶段
// 而无人触发结算，本任务定期扫描并代为强制结算。
type ProjectFinishJob struct {
	projectLogic *logic.ProjectLogic
	config       *config.Config
}

// NewProjectFinishJob 创建项目结算任务
func NewProjectFinishJob(projectLogic *logic.ProjectLogic, cfg *config.Config) *ProjectFinishJob {
	return &ProjectFinishJob{
		projectLogic: projectLogic,
		config:       cfg,
	}
}

// GetName 获取任务名称
func (j *ProjectFinishJob) GetName() string {
	return "project_finish_updater"
}

// GetSchedule 获取调度配置
func (j *ProjectFinishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ProjectFinishJob) Execute() {
	logger.Info("Starting project finish task")

	finishedCount := 0

	for page := 1; ; page++ {
		projects, _, err := j.projectLogic.GetProjects("", "", page, engine.MaxPageSize)
		if err != nil {
			logger.Error("Failed to fetch projects: %v", err)
			return
		}
		if len(projects) == 0 {
			break
		}

		for _, project := range projects {
			if project.Stage != engine.StageReadyToFinish {
				continue
			}

			if err := j.projectLogic.ForceFinish(project.Id, project.Creator); err != nil {
				logger.Error("Failed to finish project %s: %v", project.Id, err)
				continue
			}

			logger.Info("Finished project %s: %d/%d milestones completed",
				project.Id, project.FinishedCount, len(project.Milestones))
			finishedCount++
		}

		if len(projects) < engine.MaxPageSize {
			break
		}
	}

	logger.Info("Project finish task completed. Finished %d projects", finishedCount)
}
