package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

type projectService struct {
	catalog ProjectCatalog
	opts    options
}

func NewProjectService(catalog ProjectCatalog, opts ...Option) ProjectService {
	return &projectService{catalog: catalog, opts: buildOptions(opts)}
}

func (s *projectService) List(ctx context.Context) (projects []domain.Project, err error) {
	defer s.opts.track(ctx, "projects.list", time.Now(), &err, nil)
	return s.catalog.ListProjects(ctx)
}

func (s *projectService) Current(ctx context.Context) (project domain.Project, err error) {
	defer s.opts.track(ctx, "projects.current", time.Now(), &err, nil)
	return s.catalog.CurrentProject(ctx)
}
